// Copyright (c) 2026 Conteo Authors.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

// Completion state of a station's data entry
const (
	StatePending   = "pending"
	StatePartial   = "partial"
	StateCompleted = "completed"
)

// Sheet (table) names on the tabular store
const (
	SheetResults    = "Resultados"
	SheetPhotos     = "Fotos"
	SheetCandidates = "Candidatos"
	SheetLog        = "Log"
)

// Audit log event types
const (
	EventSave        = "SAVE"
	EventSavePartial = "SAVE_PARTIAL"
	EventConnect     = "CONNECT"
	EventDisconnect  = "DISCONNECT"
)

// TimestampLayout matches the es-BO locale format the spreadsheet rows use.
const TimestampLayout = "02/01/2006, 15:04:05"

// DefaultColor is assigned to candidate rows with a blank or invalid color.
const DefaultColor = "#6B7280"

// DefaultSortOrder is the sentinel for candidate rows with no usable order.
const DefaultSortOrder = 999

// Domain types

// Station is a polling place. Immutable once loaded from the catalog.
type Station struct {
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	Department   string  `json:"department"`
	Province     string  `json:"province"`
	Municipality string  `json:"municipality"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	TableCount   int     `json:"table_count"`
}

// Location returns the station's candidate-group key.
func (s Station) Location() LocationKey {
	return LocationKey{
		Department:   s.Department,
		Province:     s.Province,
		Municipality: s.Municipality,
	}
}

// LocationKey groups candidates by administrative location.
type LocationKey struct {
	Department   string `json:"department"`
	Province     string `json:"province"`
	Municipality string `json:"municipality"`
}

// Candidate is one party entry on a location's ballot.
type Candidate struct {
	PartyCode   string `json:"party_code"`
	DisplayName string `json:"display_name"`
	ColorHex    string `json:"color_hex"`
	SortOrder   int    `json:"sort_order"`
}

// TableEntry holds the data entered for one physical voting table.
// Votes never contains zero-valued entries: a zero write deletes the key.
type TableEntry struct {
	Votes  map[string]int `json:"votes"`
	Photos []string       `json:"photos"`
}

// StationTally is the full set of table entries for one station.
// Totals is a derived cache; tally.Store.ComputeTotals is the only writer.
type StationTally struct {
	Tables map[int]*TableEntry `json:"tables"`
	Totals map[string]int      `json:"totals"`
}

// Request types

type RecordVoteRequest struct {
	Party string `json:"party"`
	Value string `json:"value"`
}

type AddCandidateRequest struct {
	Department   string `json:"department"`
	Province     string `json:"province"`
	Municipality string `json:"municipality"`
	PartyCode    string `json:"party_code"`
	DisplayName  string `json:"display_name"`
	Role         string `json:"role,omitempty"`
	ColorHex     string `json:"color_hex"`
	SortOrder    int    `json:"sort_order"`
}

type SetTokenRequest struct {
	Token string `json:"token"`
}

// Response types

type StationSummary struct {
	Station
	State        string `json:"state"`
	TotalVotes   int    `json:"total_votes"`
	LeadingParty string `json:"leading_party,omitempty"`
}

type TableView struct {
	Number int            `json:"number"`
	Votes  map[string]int `json:"votes"`
	Photos []string       `json:"photos"`
}

type StationDetail struct {
	Station    Station        `json:"station"`
	State      string         `json:"state"`
	Tables     []TableView    `json:"tables"`
	Totals     map[string]int `json:"totals"`
	Configured bool           `json:"configured"`
	Candidates []Candidate    `json:"candidates,omitempty"`
	Unsaved    bool           `json:"unsaved"`
}

type StationResults struct {
	Code         string            `json:"code"`
	Totals       map[string]int    `json:"totals"`
	Percentages  map[string]string `json:"percentages"`
	TotalVotes   int               `json:"total_votes"`
	LeadingParty string            `json:"leading_party,omitempty"`
}

type CandidateListResponse struct {
	Location   LocationKey `json:"location"`
	Configured bool        `json:"configured"`
	Candidates []Candidate `json:"candidates"`
}

type AddPhotoResponse struct {
	Uploaded int      `json:"uploaded"`
	Failed   int      `json:"failed"`
	Photos   []string `json:"photos"`
}

type SaveResponse struct {
	ResultRows int  `json:"result_rows"`
	PhotoRows  int  `json:"photo_rows"`
	TotalVotes int  `json:"total_votes"`
	Partial    bool `json:"partial"`
}

type ProgressStats struct {
	Completed int `json:"completed"`
	Partial   int `json:"partial"`
	Pending   int `json:"pending"`
	Total     int `json:"total"`
}

type SessionStatus struct {
	Connected bool   `json:"connected"`
	Email     string `json:"email,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
