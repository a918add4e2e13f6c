// File: internal/attachment/model.go
package attachment

// Attachment is the uploaded file as reported back to the client.
type Attachment struct {
	Name     string `json:"name"`
	FileName string `json:"file_name"`
	FileURL  string `json:"file_url"`
	Doctype  string `json:"attached_to_doctype,omitempty"`
	Docname  string `json:"attached_to_name,omitempty"`
}
