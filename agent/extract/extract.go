// Package extract recovers JobRecord data from capability output. The
// strategies form an ordered, total chain: typed payload validation, first
// JSON array literal in the text, then standalone object-shaped substrings.
// Every strategy returns empty instead of raising; an empty result is a
// normal outcome. Extraction is a pure function of its input.
package extract

import (
	"encoding/json"
	"strings"

	contractx "github.com/jobscout-ai/jobscout/agent/contract"
)

const requiredKey = `"job_title"`

// FromResult runs the strategy chain over a delegation result: the typed
// payload first, then the reply text.
func FromResult(res contractx.DelegationResult) []contractx.JobRecord {
	if records := FromTyped(res.Jobs); len(records) > 0 {
		return records
	}
	return FromText(res.Text)
}

// FromTyped validates a typed payload element by element. Invalid elements
// are dropped individually; valid ones are kept in order.
func FromTyped(jobs []contractx.JobRecord) []contractx.JobRecord {
	if len(jobs) == 0 {
		return nil
	}
	records := make([]contractx.JobRecord, 0, len(jobs))
	for _, job := range jobs {
		if validRecord(job) {
			records = append(records, job)
		}
	}
	return records
}

// FromText scans free-form text: the first syntactically valid JSON array
// literal wins; failing that, each object-shaped substring carrying a
// job_title key is parsed independently.
func FromText(text string) []contractx.JobRecord {
	if records := fromFirstArray(text); len(records) > 0 {
		return records
	}
	return fromObjects(text)
}

func fromFirstArray(text string) []contractx.JobRecord {
	for i := 0; i < len(text); i++ {
		if text[i] != '[' {
			continue
		}
		var elements []json.RawMessage
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		if err := dec.Decode(&elements); err != nil {
			continue
		}
		records := make([]contractx.JobRecord, 0, len(elements))
		for _, raw := range elements {
			record, ok := decodeRecord(raw)
			if ok {
				records = append(records, record)
			}
		}
		return records
	}
	return nil
}

func fromObjects(text string) []contractx.JobRecord {
	var records []contractx.JobRecord
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		var raw json.RawMessage
		dec := json.NewDecoder(strings.NewReader(text[i:]))
		if err := dec.Decode(&raw); err != nil {
			continue
		}
		if !strings.Contains(string(raw), requiredKey) {
			continue
		}
		if record, ok := decodeRecord(raw); ok {
			records = append(records, record)
		}
		// Skip past the decoded object so nested objects are not re-parsed.
		i += int(dec.InputOffset()) - 1
	}
	return records
}

// decodeRecord rejects non-object elements, unparseable objects, and
// objects whose match_rating is non-numeric or fractional (the int field
// makes json reject 4.5), then applies range and required-field checks.
func decodeRecord(raw json.RawMessage) (contractx.JobRecord, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(trimmed, "{") {
		return contractx.JobRecord{}, false
	}
	var record contractx.JobRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		return contractx.JobRecord{}, false
	}
	if !validRecord(record) {
		return contractx.JobRecord{}, false
	}
	return record, true
}

func validRecord(r contractx.JobRecord) bool {
	if strings.TrimSpace(r.JobTitle) == "" || strings.TrimSpace(r.Company) == "" {
		return false
	}
	if r.MatchRating < 0 || r.MatchRating > 5 {
		return false
	}
	return true
}
