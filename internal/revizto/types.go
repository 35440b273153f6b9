package revizto

// WorkflowStatus is one project-defined status from the
// workflow-settings endpoint.
type WorkflowStatus struct {
	UUID            string `json:"uuid"`
	Name            string `json:"name"`
	TextColor       string `json:"textColor"`
	BackgroundColor string `json:"backgroundColor"`
	Category        string `json:"category"`
}

// OpenLinks carries the deep links for opening an issue in the Revizto
// desktop application or web viewer.
type OpenLinks struct {
	Desktop string `json:"desktop"`
	Web     string `json:"web"`
}

// Issue is a raw issue record as returned by the observations,
// instructions, and deficiencies endpoints. All three categories share
// this shape. Field shapes vary between responses, so every reference
// field uses a tolerant decoder.
type Issue struct {
	ID           TextValue `json:"id"`
	Title        TextValue `json:"title"`
	Status       StatusRef `json:"status"`
	CustomStatus StatusRef `json:"customStatus"`
	Created      TextValue `json:"created"`
	Assignee     TextValue `json:"assignee"`
	Sheet        SheetRef  `json:"sheet"`
	OpenLinks    OpenLinks `json:"openLinks"`
	Preview      Preview   `json:"preview"`
}

// Change is one field-level old/new pair inside a diff comment.
type Change struct {
	Old TextValue `json:"old"`
	New TextValue `json:"new"`
}

// Comment is a raw entry of an issue's comment/event history.
type Comment struct {
	Type     string            `json:"type"`
	Created  TextValue         `json:"created"`
	Author   Author            `json:"author"`
	Text     string            `json:"text"`
	Filename string            `json:"filename"`
	Mimetype string            `json:"mimetype"`
	Preview  Preview           `json:"preview"`
	Diff     map[string]Change `json:"diff"`
}

// SearchResult is one project hit from the search endpoint.
type SearchResult struct {
	ID   TextValue `json:"id"`
	Text string    `json:"text"`
}
