// Package report renders aggregated stats as delimited text (CSV) and
// SpreadsheetML, the two export formats offered to users. Percentages
// here come from stats.Percent so export always matches the on-screen
// numbers.
package report

import (
	"encoding/csv"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"

	"timeledger/internal/domain"
	"timeledger/internal/stats"
)

var header = []string{"Project", "Time (Hours)", "Formatted Time", "Percentage (%)"}

// WriteCSV writes one row per project stat plus a Total row.
func WriteCSV(w io.Writer, rows []domain.ProjectStat, total float64) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			r.ProjectName,
			strconv.FormatFloat(r.Hours, 'f', 4, 64),
			stats.FormatTime(r.Hours),
			fmt.Sprintf("%.2f", stats.Percent(r.Hours, total)),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	totalPct := "100.00"
	if total == 0 {
		totalPct = "0.00"
	}
	if err := cw.Write([]string{
		"Total",
		strconv.FormatFloat(total, 'f', 4, 64),
		stats.FormatTime(total),
		totalPct,
	}); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

// SpreadsheetML (the XML dialect Excel opens directly) for the same
// table. Structs mirror the urn:schemas-microsoft-com:office:spreadsheet
// markup.

type xmlWorkbook struct {
	XMLName   xml.Name     `xml:"Workbook"`
	Xmlns     string       `xml:"xmlns,attr"`
	XmlnsSS   string       `xml:"xmlns:ss,attr"`
	Worksheet xmlWorksheet `xml:"Worksheet"`
}

type xmlWorksheet struct {
	Name  string   `xml:"ss:Name,attr"`
	Table xmlTable `xml:"Table"`
}

type xmlTable struct {
	Rows []xmlRow `xml:"Row"`
}

type xmlRow struct {
	Cells []xmlCell `xml:"Cell"`
}

type xmlCell struct {
	Data xmlData `xml:"Data"`
}

type xmlData struct {
	Type  string `xml:"ss:Type,attr"`
	Value string `xml:",chardata"`
}

func stringCell(v string) xmlCell { return xmlCell{Data: xmlData{Type: "String", Value: v}} }
func numberCell(v string) xmlCell { return xmlCell{Data: xmlData{Type: "Number", Value: v}} }

// WriteSpreadsheetML writes the report as a single-worksheet workbook.
func WriteSpreadsheetML(w io.Writer, rows []domain.ProjectStat, total float64) error {
	table := xmlTable{}
	headerRow := xmlRow{}
	for _, h := range header {
		headerRow.Cells = append(headerRow.Cells, stringCell(h))
	}
	table.Rows = append(table.Rows, headerRow)

	for _, r := range rows {
		table.Rows = append(table.Rows, xmlRow{Cells: []xmlCell{
			stringCell(r.ProjectName),
			numberCell(strconv.FormatFloat(r.Hours, 'f', 4, 64)),
			stringCell(stats.FormatTime(r.Hours)),
			numberCell(fmt.Sprintf("%.2f", stats.Percent(r.Hours, total))),
		}})
	}
	totalPct := "100"
	if total == 0 {
		totalPct = "0"
	}
	table.Rows = append(table.Rows, xmlRow{Cells: []xmlCell{
		stringCell("Total"),
		numberCell(strconv.FormatFloat(total, 'f', 4, 64)),
		stringCell(stats.FormatTime(total)),
		numberCell(totalPct),
	}})

	wb := xmlWorkbook{
		Xmlns:   "urn:schemas-microsoft-com:office:spreadsheet",
		XmlnsSS: "urn:schemas-microsoft-com:office:spreadsheet",
		Worksheet: xmlWorksheet{
			Name:  "Time Report",
			Table: table,
		},
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(wb); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
