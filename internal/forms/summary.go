package forms

// Row is one line of a settings summary table.
type Row struct {
	Configuration string
	Value         string
	Editable      bool
	// Section marks a heading row; Indent marks a row nested under one.
	Section bool
	Indent  bool
}

// EditableText renders the editable column.
func (r Row) EditableText() string {
	if r.Editable {
		return "Yes"
	}
	return "No"
}

// String renders the row as "Configuration: Value (Editable: Yes)".
func (r Row) String() string {
	return r.Configuration + ": " + r.Value + " (Editable: " + r.EditableText() + ")"
}
