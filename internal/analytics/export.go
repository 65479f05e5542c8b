package analytics

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/civicdesk/issue-admin/internal/domain"
	apperrors "github.com/civicdesk/issue-admin/pkg/util/errorutil"
)

// Field is one named value of an exported record.
type Field struct {
	Name  string
	Value any
}

// Record is an ordered list of fields.
type Record []Field

// Get returns the value stored under name.
func (r Record) Get(name string) (any, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// EncodeDelimited renders records as a header of field names followed by one
// line per record with every value JSON-quoted. Columns follow the first
// record's field order; missing values render as "".
func EncodeDelimited(records []Record) (string, error) {
	if len(records) == 0 {
		return "", nil
	}
	header := make([]string, 0, len(records[0]))
	for _, f := range records[0] {
		header = append(header, f.Name)
	}

	var b strings.Builder
	b.WriteString(strings.Join(header, ","))
	for _, record := range records {
		b.WriteByte('\n')
		for i, name := range header {
			if i > 0 {
				b.WriteByte(',')
			}
			value, _ := record.Get(name)
			quoted, err := json.MarshalNoEscape(stringify(value))
			if err != nil {
				return "", fmt.Errorf("encode %s: %w", name, err)
			}
			b.Write(quoted)
		}
	}
	return b.String(), nil
}

// DecodeDelimited parses EncodeDelimited output back into string records.
func DecodeDelimited(data string) ([]Record, error) {
	if strings.TrimSpace(data) == "" {
		return nil, nil
	}
	scanner := bufio.NewScanner(strings.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var header []string
	var out []Record
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if header == nil {
			header = strings.Split(text, ",")
			continue
		}
		var values []string
		if err := json.Unmarshal([]byte("["+text+"]"), &values); err != nil {
			return nil, apperrors.NewValidationError("malformed export row", map[string]any{"line": line})
		}
		if len(values) != len(header) {
			return nil, apperrors.NewValidationError("column count mismatch", map[string]any{"line": line})
		}
		record := make(Record, len(header))
		for i, name := range header {
			record[i] = Field{Name: name, Value: values[i]}
		}
		out = append(out, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case *string:
		if val == nil {
			return ""
		}
		return *val
	case time.Time:
		if val.IsZero() {
			return ""
		}
		return val.UTC().Format(time.RFC3339)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case bool:
		return strconv.FormatBool(val)
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}

// IssueRecords flattens issues for export. staffNames resolves assignees;
// unresolvable assignees export as "Unassigned".
func IssueRecords(issues []domain.Issue, staffNames map[string]string) []Record {
	out := make([]Record, 0, len(issues))
	for _, issue := range issues {
		reporter := ""
		if issue.Reporter != nil {
			reporter = issue.Reporter.Name
		}
		out = append(out, Record{
			{Name: "id", Value: issue.ID},
			{Name: "category", Value: issue.Category},
			{Name: "description", Value: issue.Description},
			{Name: "status", Value: string(issue.Status)},
			{Name: "assignedTo", Value: AssigneeName(issue.AssignedTo, staffNames)},
			{Name: "ward", Value: issue.Location.Ward},
			{Name: "address", Value: issue.Location.Address},
			{Name: "lat", Value: issue.Location.Lat},
			{Name: "lng", Value: issue.Location.Lng},
			{Name: "reporter", Value: reporter},
			{Name: "createdAt", Value: issue.CreatedAt},
			{Name: "updatedAt", Value: issue.UpdatedAt},
		})
	}
	return out
}

// CategoryRecords exports the category breakdown.
func CategoryRecords(counts []CategoryCount) []Record {
	out := make([]Record, 0, len(counts))
	for _, c := range counts {
		out = append(out, Record{{Name: "name", Value: c.Category}, {Name: "value", Value: c.Count}})
	}
	return out
}

// WardRecords exports the ward heat map.
func WardRecords(counts []WardCount) []Record {
	out := make([]Record, 0, len(counts))
	for _, c := range counts {
		out = append(out, Record{{Name: "ward", Value: c.Ward}, {Name: "count", Value: c.Count}})
	}
	return out
}

// ResponseTimeRecords exports per-department response times.
func ResponseTimeRecords(rows []DepartmentResponse) []Record {
	out := make([]Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, Record{
			{Name: "departmentId", Value: r.DepartmentID},
			{Name: "name", Value: r.Name},
			{Name: "hrs", Value: r.Hours},
			{Name: "resolved", Value: r.Resolved},
		})
	}
	return out
}

// Unassigned is rendered when an issue has no resolvable assignee.
const Unassigned = "Unassigned"

// AssigneeName resolves a weak staff reference for display.
func AssigneeName(id *string, staffNames map[string]string) string {
	if id == nil {
		return Unassigned
	}
	if name, ok := staffNames[*id]; ok {
		return name
	}
	return Unassigned
}
