package model

import "encoding/json"

// ItemFailure records why a single item of a batch could not be processed.
type ItemFailure struct {
	Item string
	Err  error
}

func (f ItemFailure) MarshalJSON() ([]byte, error) {
	msg := ""
	if f.Err != nil {
		msg = f.Err.Error()
	}
	return json.Marshal(struct {
		Item  string `json:"item"`
		Error string `json:"error"`
	}{Item: f.Item, Error: msg})
}

// BatchReport is the outcome of a per-item stage. Succeeded holds the affected
// paths; in dry-run mode those are the paths that would have been affected.
type BatchReport struct {
	Succeeded []string      `json:"succeeded"`
	Failed    []ItemFailure `json:"failed"`
	DryRun    bool          `json:"dry_run"`
}

func (r *BatchReport) Count() int { return len(r.Succeeded) }

func (r *BatchReport) FailureCount() int { return len(r.Failed) }

// Succeed records a successful item.
func (r *BatchReport) Succeed(item string) {
	r.Succeeded = append(r.Succeeded, item)
}

// Fail records a failed item.
func (r *BatchReport) Fail(item string, err error) {
	r.Failed = append(r.Failed, ItemFailure{Item: item, Err: err})
}

// UnpackReport is the outcome of an extraction pass. Extracted holds archive
// names extracted in this call.
type UnpackReport struct {
	Extracted []string      `json:"extracted"`
	Skipped   []string      `json:"skipped"`
	Failed    []ItemFailure `json:"failed"`
}

func (r *UnpackReport) Count() int { return len(r.Extracted) }

// SizeReport compares an archive with its extraction target.
type SizeReport struct {
	Name               string  `json:"name"`
	Archive            string  `json:"archive"`
	ArchiveSizeBytes   int64   `json:"archive_size_bytes"`
	ExtractedSizeBytes int64   `json:"extracted_size_bytes"`
	Ratio              float64 `json:"ratio"`
}

// ValidationReport summarizes extraction targets. It is advisory only.
type ValidationReport struct {
	WithData     int          `json:"with_data"`
	Empty        int          `json:"empty"`
	EmptyTargets []string     `json:"empty_targets"`
	Entries      []SizeReport `json:"entries"`
	SizeWarnings []SizeReport `json:"size_warnings"`
	Threshold    float64      `json:"threshold"`
}

// Flagged returns archive names of targets that are empty or below the size
// ratio threshold, in report order without duplicates.
func (r *ValidationReport) Flagged() []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(name string) {
		if name == "" {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	for _, w := range r.SizeWarnings {
		add(w.Archive)
	}
	for _, target := range r.EmptyTargets {
		for _, e := range r.Entries {
			if e.Name == target {
				add(e.Archive)
			}
		}
	}
	return out
}

// Healthy returns archive names whose target has data and no size warning.
func (r *ValidationReport) Healthy() []string {
	flagged := make(map[string]struct{})
	for _, name := range r.Flagged() {
		flagged[name] = struct{}{}
	}
	empty := make(map[string]struct{})
	for _, t := range r.EmptyTargets {
		empty[t] = struct{}{}
	}

	var out []string
	for _, e := range r.Entries {
		if e.Archive == "" {
			continue
		}
		if _, ok := flagged[e.Archive]; ok {
			continue
		}
		if _, ok := empty[e.Name]; ok {
			continue
		}
		out = append(out, e.Archive)
	}
	return out
}

// CollapseReport extends BatchReport with what is left after a sweep.
type CollapseReport struct {
	BatchReport
	Remaining     int      `json:"remaining"`
	TopExtensions []string `json:"top_extensions"`
}

type ExtensionCount struct {
	Extension string `json:"extension"`
	Count     int    `json:"count"`
}

type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// LibraryReport is a read-only survey of a tree.
type LibraryReport struct {
	Files      int                `json:"files"`
	ByClass    map[MediaClass]int `json:"by_class"`
	Extensions []ExtensionCount   `json:"extensions"`
	Years      []YearCount        `json:"years,omitempty"`
	NoDate     int                `json:"no_date,omitempty"`
}
