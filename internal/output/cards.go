package output

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/stgm/chantier/internal/controller"
	"github.com/stgm/chantier/internal/history"
	"github.com/stgm/chantier/internal/issue"
	"github.com/stgm/chantier/internal/revizto"
	"github.com/stgm/chantier/internal/status"
)

// French section titles, keyed by collection.
var categoryTitles = map[controller.Category]string{
	controller.CategoryObservations: "Observations",
	controller.CategoryInstructions: "Instructions",
	controller.CategoryDeficiencies: "Déficiences",
}

// CardRenderer prints issue cards and their histories as the pipeline
// delivers them. The controller serializes callbacks, so no internal
// locking is needed.
type CardRenderer struct {
	UI *UI

	// Resolve maps a raw status reference to display metadata. Wired
	// to the owning controller's Resolve method.
	Resolve func(ref revizto.StatusRef) status.Descriptor
}

// NewCardRenderer creates a renderer writing through ui.
func NewCardRenderer(ui *UI, resolve func(revizto.StatusRef) status.Descriptor) *CardRenderer {
	return &CardRenderer{UI: ui, Resolve: resolve}
}

func (r *CardRenderer) IssuesReady(cat controller.Category, issues []issue.Issue) {
	title := categoryTitles[cat]
	if title == "" {
		title = string(cat)
	}
	fmt.Fprintf(r.UI.Out, "\n%s (%d)\n", Cyan(title), len(issues))

	if len(issues) == 0 {
		fmt.Fprintln(r.UI.Out, "  Aucun élément.")
		return
	}
	for _, it := range issues {
		r.renderCard(it)
	}
}

func (r *CardRenderer) CollectionError(cat controller.Category, err error) {
	title := categoryTitles[cat]
	if title == "" {
		title = string(cat)
	}
	r.UI.Error("%s : Erreur lors du chargement des données. (%v)", title, err)
}

func (r *CardRenderer) HistoryReady(issueID string, events []history.Event, imageURL string) {
	fmt.Fprintf(r.UI.Out, "\n%s #%s\n", Yellow("Historique"), issueID)
	if imageURL != "" {
		fmt.Fprintf(r.UI.Out, "  Image : %s\n", imageURL)
	}
	r.renderEvents(events)
}

func (r *CardRenderer) HistoryError(issueID string, err error) {
	r.UI.Error("#%s : Erreur lors du chargement de l'historique. (%v)", issueID, err)
}

func (r *CardRenderer) renderCard(it issue.Issue) {
	d := r.Resolve(it.StatusRef)
	fmt.Fprintf(r.UI.Out, "\n  #%s %s %s\n", it.ID, StatusChip(d), it.Title)
	fmt.Fprintf(r.UI.Out, "    Assignée à : %s\n", it.Assignee)
	fmt.Fprintf(r.UI.Out, "    Feuille : %s", it.SheetNumber)
	if it.SheetName != "" && it.SheetName != issue.DefaultSheet {
		fmt.Fprintf(r.UI.Out, " (%s)", it.SheetName)
	}
	fmt.Fprintln(r.UI.Out)
	fmt.Fprintf(r.UI.Out, "    Créée le : %s\n", FormatDate(it.Created, it.CreatedAt))
	if it.Links.Web != "" {
		r.UI.VerboseLog("lien web : %s", it.Links.Web)
	}
	if it.Links.Desktop != "" {
		r.UI.VerboseLog("lien bureau : %s", it.Links.Desktop)
	}
}

// renderEvents prints history entries newest first. Diff events record
// internal field changes and are not part of the visible history.
func (r *CardRenderer) renderEvents(events []history.Event) {
	shown := 0
	for _, e := range events {
		if e.Kind == history.KindDiff {
			continue
		}
		shown++
		fmt.Fprintf(r.UI.Out, "  %s, %s :", e.Author, FormatDate(e.Created, e.At))
		switch e.Kind {
		case history.KindText:
			fmt.Fprintf(r.UI.Out, " %s\n", e.Text)
		case history.KindFile:
			name := e.Filename
			if name == "" {
				name = "fichier"
			}
			fmt.Fprintf(r.UI.Out, " [pièce jointe] %s\n", name)
		case history.KindMarkup:
			fmt.Fprintln(r.UI.Out, " [annotation]")
		default:
			fmt.Fprintln(r.UI.Out, " [entrée]")
		}
	}
	if shown == 0 {
		fmt.Fprintln(r.UI.Out, "  Aucun historique disponible.")
	}
}

// StatusChip renders a status label in its configured colors, falling
// back to a plain bracketed label when the colors do not parse.
func StatusChip(d status.Descriptor) string {
	fr, fok := hexRGB(d.TextColor)
	br, bok := hexRGB(d.BackgroundColor)
	label := " " + d.DisplayName + " "
	if !fok || !bok {
		return "[" + d.DisplayName + "]"
	}
	return color.RGB(fr[0], fr[1], fr[2]).AddBgRGB(br[0], br[1], br[2]).Sprint(label)
}

// hexRGB parses a #RRGGBB color.
func hexRGB(s string) ([3]int, bool) {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return [3]int{}, false
	}
	var out [3]int
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(s[i*2:i*2+2], 16, 8)
		if err != nil {
			return [3]int{}, false
		}
		out[i] = int(v)
	}
	return out, true
}

// FormatDate renders a timestamp as "2006-01-02 15:04", falling back
// to the raw wire string when parsing failed upstream.
func FormatDate(raw string, at time.Time) string {
	if at.IsZero() {
		if raw == "" {
			return "N/A"
		}
		return raw
	}
	return at.Format("2006-01-02 15:04")
}
