package models

// Profile is the structured summary generated when a table is loaded
type Profile struct {
	Rows     int             `json:"rows"`
	Columns  int             `json:"columns"`
	KPIs     []KPI           `json:"kpis"`
	Insights []string        `json:"insights"`
	Schema   []ColumnProfile `json:"schema"`
}

// KPI is a single headline metric card
type KPI struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Icon  string `json:"icon"`
}

// ColumnProfile describes one column of the loaded table
type ColumnProfile struct {
	Name       string  `json:"name"`
	Type       string  `json:"type"`
	Missing    int     `json:"missing"`
	MissingPct float64 `json:"missing_pct"`
	Unique     int     `json:"unique"`
}
