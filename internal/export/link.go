package export

import (
	"encoding/base64"
	"fmt"
	"html"
)

// XLSXMimeType is the media type of xlsx workbooks.
const XLSXMimeType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DataURI embeds a workbook in a base64 data URI.
func DataURI(content []byte) string {
	return "data:" + XLSXMimeType + ";base64," + base64.StdEncoding.EncodeToString(content)
}

// ImageDataURI embeds a PNG image in a base64 data URI.
func ImageDataURI(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}

// DownloadLink returns an HTML anchor that downloads content as filename.
func DownloadLink(content []byte, filename, text string) string {
	return fmt.Sprintf(`<a href="%s" download="%s">%s</a>`,
		DataURI(content), html.EscapeString(filename), html.EscapeString(text))
}
