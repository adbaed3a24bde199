package output

import (
	"encoding/xml"
)

// XMLFormatter formats reports as generic XML.
type XMLFormatter struct{}

// Format implements Formatter.
func (*XMLFormatter) Format(report *Report) ([]byte, error) {
	data, err := xml.MarshalIndent(newDocument(report), "", "  ")
	if err != nil {
		return nil, err
	}

	return append([]byte(xml.Header), data...), nil
}
