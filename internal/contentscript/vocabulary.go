// Package contentscript defines the wire-protocol vocabulary shared
// between the agent and the in-page content script: one request shape
// and one result shape per action, marshaled to/from the
// map[string]any the browserstate bridge sends and receives.
package contentscript

// Action names, matching the content script's accepted {action, ...params}
// messages.
const (
	ActionExtractContent           = "extractContent"
	ActionClickElement             = "clickElement"
	ActionFillForm                 = "fillForm"
	ActionScrollAndWait            = "scrollAndWait"
	ActionHoverElement             = "hoverElement"
	ActionPressKey                 = "pressKey"
	ActionHandleDialog             = "handleDialog"
	ActionGetDialogs               = "getDialogs"
	ActionExtractAccessibilityTree = "extractAccessibilityTree"
)

// InteractiveElement is one entry in extractContent's links/buttons/
// inputs/selects/textareas arrays: the id matches a data-vish-id
// attribute in the returned content.
type InteractiveElement struct {
	ID         int    `json:"id"`
	Tag        string `json:"tag"`
	Text       string `json:"text,omitempty"`
	Href       string `json:"href,omitempty"`
	Value      string `json:"value,omitempty"`
	Placeholder string `json:"placeholder,omitempty"`
	Name       string `json:"name,omitempty"`
}

// ExtractContentResult is extractContent's response shape.
type ExtractContentResult struct {
	Title       string                `json:"title"`
	URL         string                `json:"url"`
	Content     string                `json:"content"`
	ContentMode string                `json:"contentMode"`
	ByteSize    int                   `json:"byteSize"`
	RawHTMLSize int                   `json:"rawHtmlSize"`
	DebugLog    []string              `json:"debugLog,omitempty"`
	DOMStable   bool                  `json:"domStable"`
	DOMWaitMs   int                   `json:"domWaitMs"`
	Links       []InteractiveElement  `json:"links"`
	Buttons     []InteractiveElement  `json:"buttons"`
	Inputs      []InteractiveElement  `json:"inputs"`
	Selects     []InteractiveElement  `json:"selects"`
	Textareas   []InteractiveElement  `json:"textareas"`
}

// ClickModifiers requests platform-appropriate modifier keys: meta on
// macOS, ctrl elsewhere, resolved by the content script itself.
type ClickModifiers struct {
	NewTab       bool `json:"newTab,omitempty"`
	NewTabActive bool `json:"newTabActive,omitempty"`
	Download     bool `json:"download,omitempty"`
}

// ClickElementParams is clickElement's request shape.
type ClickElementParams struct {
	ElementID int             `json:"elementId"`
	Modifiers ClickModifiers  `json:"modifiers,omitempty"`
}

// ClickElementResult is clickElement's response shape.
type ClickElementResult struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message,omitempty"`
	Modifiers ClickModifiers `json:"modifiers,omitempty"`
}

// FormField is one (elementId, value) pair in fillForm's request.
type FormField struct {
	ElementID int    `json:"elementId"`
	Value     string `json:"value"`
}

// FillFormParams is fillForm's request shape.
type FillFormParams struct {
	Fields          []FormField `json:"fields"`
	Submit          bool        `json:"submit,omitempty"`
	SubmitElementID int         `json:"submitElementId,omitempty"`
}

// FieldResult reports the outcome of filling one field.
type FieldResult struct {
	ElementID int    `json:"elementId"`
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
}

// FillFormResult is fillForm's response shape.
type FillFormResult struct {
	FilledFields int           `json:"filled_fields"`
	Results      []FieldResult `json:"results"`
}

// ScrollDirection enumerates scrollAndWait's direction parameter.
type ScrollDirection string

const (
	ScrollUp     ScrollDirection = "up"
	ScrollDown   ScrollDirection = "down"
	ScrollTop    ScrollDirection = "top"
	ScrollBottom ScrollDirection = "bottom"
)

// ScrollAndWaitParams is scrollAndWait's request shape.
type ScrollAndWaitParams struct {
	Direction ScrollDirection `json:"direction"`
	Pixels    int             `json:"pixels,omitempty"`
	WaitMs    int             `json:"waitMs,omitempty"`
}

// ScrollAndWaitResult is scrollAndWait's response shape.
type ScrollAndWaitResult struct {
	Scrolled        bool `json:"scrolled"`
	PreviousY       int  `json:"previous_y"`
	CurrentY        int  `json:"current_y"`
	ScrolledPixels  int  `json:"scrolled_pixels"`
}

// HoverElementParams is hoverElement's request shape.
type HoverElementParams struct {
	ElementID int `json:"elementId"`
}

// PressKeyParams is pressKey's request shape.
type PressKeyParams struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers,omitempty"`
}

// HandleDialogParams is handleDialog's request shape.
type HandleDialogParams struct {
	Accept     bool   `json:"accept"`
	PromptText string `json:"promptText,omitempty"`
}

// SuccessResult is the generic {success, ...} shape shared by
// hoverElement, pressKey, and handleDialog.
type SuccessResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// DialogRecord is one dialog captured by the content script's
// window.alert/confirm/prompt overrides.
type DialogRecord struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Handled bool   `json:"handled"`
}

// GetDialogsResult is getDialogs' response shape.
type GetDialogsResult struct {
	Success bool           `json:"success"`
	Dialogs []DialogRecord `json:"dialogs"`
}

// ExtractAccessibilityTreeResult is extractAccessibilityTree's response
// shape: an indented-text rendering of the accessibility tree.
type ExtractAccessibilityTreeResult struct {
	Success  bool   `json:"success"`
	Mode     string `json:"mode"`
	Content  string `json:"content"`
	RefCount int    `json:"refCount"`
}
