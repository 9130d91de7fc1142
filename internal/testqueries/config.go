package testqueries

import "time"

// Config holds configuration for the query load test.
type Config struct {
	BaseURL    string        // Base URL of the service
	NumQueries int           // Number of queries to generate
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	OutputFile string        // Output file for generated queries
	LogFile    string        // Log file for test output
	Mode       string        // Evaluation mode submitted with each query
	Verbose    bool          // Enable verbose logging
}

// Position mirrors the wire shape of one ecliptic position.
type Position struct {
	Longitude float64  `json:"longitude"`
	Speed     *float64 `json:"speed,omitempty"`
}

// Query mirrors the POST /v1/queries payload.
type Query struct {
	ID       string              `json:"id"`
	Sect     string              `json:"sect"`
	Mode     string              `json:"mode"`
	Transits map[string]Position `json:"transits"`
	Natal    map[string]Position `json:"natal"`
}

// AckResponse mirrors the admission acknowledgement.
type AckResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// Hit mirrors the serialized aspect hit, reduced to the fields the
// verification pass inspects.
type Hit struct {
	TransitBody   string  `json:"transit_body"`
	NatalPoint    string  `json:"natal_point"`
	AspectName    string  `json:"aspect_name"`
	ErrorAbsDeg   float64 `json:"error_abs_deg"`
	ApplyingLabel string  `json:"applying_label"`
	Qualifies     bool    `json:"qualifies"`
}

// Report mirrors the stored report envelope.
type Report struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Error  string `json:"error"`
	Mode   string `json:"mode"`
	Rules  struct {
		Sect            string  `json:"sect"`
		MinuteTolArcmin float64 `json:"minute_tol_arcmin"`
	} `json:"rules"`
	Hits           []Hit `json:"hits"`
	QualifyingHits []Hit `json:"qualifying_hits"`
	AllHits        []Hit `json:"all_hits"`
}

// Stats holds test statistics.
type Stats struct {
	QueriesGenerated  int
	QueriesSubmitted  int
	QueriesAccepted   int
	QueriesDuplicate  int
	QueriesFailed     int
	ReportsRetrieved  int
	ReportsCompleted  int
	ReportsFailed     int
	HitsObserved      int
	QualifyingHits    int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
