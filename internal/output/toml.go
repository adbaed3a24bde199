package output

import (
	"github.com/pelletier/go-toml/v2"
)

// TOMLFormatter formats reports as TOML. Files become an array of tables.
type TOMLFormatter struct{}

// Format implements Formatter.
func (*TOMLFormatter) Format(report *Report) ([]byte, error) {
	return toml.Marshal(newDocument(report))
}
