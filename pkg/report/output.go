package report

// OutputFormat is an export format accepted by the print collaborator.
type OutputFormat string

const (
	FormatPDF  OutputFormat = "pdf"
	FormatXLS  OutputFormat = "xls"
	FormatCSV  OutputFormat = "csv"
	FormatRTF  OutputFormat = "rtf"
	FormatHTML OutputFormat = "html"
	FormatTXT  OutputFormat = "txt"
)

// DefaultOutputFormat is preselected when the wizard opens.
const DefaultOutputFormat = FormatPDF

// OutputFormatInfo pairs a format with its display name.
type OutputFormatInfo struct {
	Format OutputFormat `json:"format"`
	Name   string       `json:"name"`
}

// OutputFormats lists the accepted formats with their display names.
var OutputFormats = []OutputFormatInfo{
	{FormatPDF, "Portable Document (pdf)"},
	{FormatXLS, "Excel Spreadsheet (xls)"},
	{FormatCSV, "Comma Separated Values (csv)"},
	{FormatRTF, "Rich Text (rtf)"},
	{FormatHTML, "HyperText (html)"},
	{FormatTXT, "Plain Text (txt)"},
}

// Valid reports whether f is an accepted format.
func (f OutputFormat) Valid() bool {
	for _, o := range OutputFormats {
		if o.Format == f {
			return true
		}
	}
	return false
}
