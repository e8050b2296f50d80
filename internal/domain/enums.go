package domain

// RegionKind selects the extraction strategy for a template region.
type RegionKind string

const (
	RegionGeneral   RegionKind = "general"
	RegionParagraph RegionKind = "paragraph"
	RegionTable     RegionKind = "table"
)

// Valid reports whether k is one of the known region kinds.
func (k RegionKind) Valid() bool {
	switch k {
	case RegionGeneral, RegionParagraph, RegionTable:
		return true
	}
	return false
}

// Orientation of a detected ruling line.
type Orientation string

const (
	Horizontal Orientation = "horizontal"
	Vertical   Orientation = "vertical"
)

// Outcome is the per-document result of a pipeline run.
type Outcome string

const (
	OutcomeMatched Outcome = "matched"
	OutcomeNoMatch Outcome = "no_match"
	OutcomeFailed  Outcome = "failed"
)

// GridSource records where a table's row/column boundaries came from.
type GridSource string

const (
	GridSourceNone      GridSource = ""
	GridSourceLines     GridSource = "lines"
	GridSourceTemplate  GridSource = "template"
	GridSourceAlignment GridSource = "alignment"
)

// JobStatus represents the lifecycle of a queued extraction job.
type JobStatus string

const (
	JobStatusQueued     JobStatus = "queued"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
)

// Role of an authenticated API caller.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleService Role = "service"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleService
}
