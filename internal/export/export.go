// Package export writes the entry store in the formats offered by "hourcal export".
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	ical "github.com/arran4/golang-ical"
	"gopkg.in/yaml.v3"

	"github.com/xolan/hourcal/internal/entry"
	"github.com/xolan/hourcal/internal/holiday"
	"github.com/xolan/hourcal/internal/timeutil"
)

// ProductID identifies hourcal in exported calendars
const ProductID = "-//hourcal//hourcal//IT"

// Formats lists the supported export formats.
var Formats = []string{"json", "csv", "yaml", "ics"}

// Record is one exported day.
type Record struct {
	Date    string     `json:"date" yaml:"date"`
	Kind    entry.Kind `json:"kind" yaml:"kind"`
	Hours   int        `json:"hours,omitempty" yaml:"hours,omitempty"`
	Label   string     `json:"label" yaml:"label"`
	Holiday string     `json:"holiday,omitempty" yaml:"holiday,omitempty"`
}

// Metadata describes an export.
type Metadata struct {
	ExportTimestamp time.Time         `json:"export_timestamp" yaml:"export_timestamp"`
	TotalEntries    int               `json:"total_entries" yaml:"total_entries"`
	TotalHours      int               `json:"total_hours" yaml:"total_hours"`
	VacationDays    int               `json:"vacation_days" yaml:"vacation_days"`
	LeaveDays       int               `json:"leave_days" yaml:"leave_days"`
	FilterCriteria  map[string]string `json:"filter_criteria" yaml:"filter_criteria,omitempty"`
}

// Document is the JSON and YAML export layout.
type Document struct {
	Metadata Metadata `json:"metadata" yaml:"metadata"`
	Entries  []Record `json:"entries" yaml:"entries"`
}

// Collect returns the entries dated within [start, end] in date order.
// A zero start or end leaves that side open.
func Collect(entries map[string]entry.Entry, start, end time.Time) []Record {
	records := make([]Record, 0, len(entries))
	for date, e := range entries {
		t, err := timeutil.ParseKey(date)
		if err != nil || e.IsZero() {
			continue
		}
		if !timeutil.IsInRange(t, start, end) {
			continue
		}
		r := Record{Date: date, Kind: e.Kind, Label: e.String(), Holiday: holiday.Lookup(date)}
		if e.IsHours() {
			r.Hours = e.Value
		}
		records = append(records, r)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].Date < records[j].Date })
	return records
}

// NewDocument wraps records with totals and the filter that selected them.
func NewDocument(records []Record, now time.Time, criteria map[string]string) Document {
	doc := Document{
		Metadata: Metadata{
			ExportTimestamp: now,
			TotalEntries:    len(records),
			FilterCriteria:  criteria,
		},
		Entries: records,
	}
	if doc.Metadata.FilterCriteria == nil {
		doc.Metadata.FilterCriteria = map[string]string{}
	}
	for _, r := range records {
		switch r.Kind {
		case entry.KindHours:
			doc.Metadata.TotalHours += r.Hours
		case entry.KindVacation:
			doc.Metadata.VacationDays++
		case entry.KindLeave:
			doc.Metadata.LeaveDays++
		}
	}
	return doc
}

// WriteJSON writes doc as indented JSON.
func WriteJSON(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}

// WriteYAML writes doc as YAML.
func WriteYAML(w io.Writer, doc Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return err
	}
	return enc.Close()
}

// WriteCSV writes one row per record after a header row.
func WriteCSV(w io.Writer, records []Record) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"date", "kind", "hours", "label", "holiday"}); err != nil {
		return fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, r := range records {
		row := []string{r.Date, string(r.Kind), strconv.Itoa(r.Hours), r.Label, r.Holiday}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteICS writes every record as an all-day event, so the days can be
// overlaid on another calendar. UIDs are stable per date.
func WriteICS(w io.Writer, records []Record, now time.Time) error {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(ProductID)

	for _, r := range records {
		day, err := timeutil.ParseKey(r.Date)
		if err != nil {
			return err
		}
		ev := cal.AddEvent(r.Date + "@hourcal")
		ev.SetDtStampTime(now.UTC())
		ev.SetAllDayStartAt(day)
		ev.SetAllDayEndAt(day.AddDate(0, 0, 1))
		ev.SetSummary(eventSummary(r))
		if r.Holiday != "" {
			ev.SetDescription(r.Holiday)
		}
	}
	return cal.SerializeTo(w)
}

func eventSummary(r Record) string {
	switch r.Kind {
	case entry.KindHours:
		return fmt.Sprintf("Ore: %d", r.Hours)
	case entry.KindVacation:
		return "Ferie"
	case entry.KindLeave:
		return "Permesso"
	}
	return r.Label
}
