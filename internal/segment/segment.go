package segment

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Mode selects which dataset the analysis runs against.
type Mode int

const (
	ModeDefault Mode = iota
	ModeUploaded
)

func (m Mode) String() string {
	switch m {
	case ModeDefault:
		return "default"
	case ModeUploaded:
		return "uploaded"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode accepts the names printed by String.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "default", "sample":
		return ModeDefault, nil
	case "uploaded", "upload", "file":
		return ModeUploaded, nil
	}
	return ModeDefault, fmt.Errorf("invalid data source mode: %q (use default or uploaded)", s)
}

// Required logical field keys, in display order.
const (
	FieldCustomerID  = "customer_id"
	FieldInvoiceID   = "invoice_id"
	FieldInvoiceDate = "invoice_date"
	FieldQuantity    = "quantity"
	FieldPrice       = "price"
)

// Field describes one logical column the service needs.
type Field struct {
	Key   string
	Label string
}

// RequiredFields is the fixed set of fields every uploaded dataset must map.
var RequiredFields = []Field{
	{Key: FieldCustomerID, Label: "Customer ID:"},
	{Key: FieldInvoiceID, Label: "Invoice ID:"},
	{Key: FieldInvoiceDate, Label: "Invoice Date:"},
	{Key: FieldQuantity, Label: "Quantity:"},
	{Key: FieldPrice, Label: "Price:"},
}

// IsRequiredField reports whether key names one of RequiredFields.
func IsRequiredField(key string) bool {
	for _, f := range RequiredFields {
		if f.Key == key {
			return true
		}
	}
	return false
}

var (
	ErrNoFile              = errors.New("no file selected")
	ErrInvalidClusterCount = errors.New("cluster count must be a positive integer")
	ErrIncompleteMapping   = errors.New("column mapping is incomplete")
)

// UploadedFile is a spreadsheet picked by the user.
type UploadedFile struct {
	Name string
	Data []byte
}

// FieldMapping maps each required field key to a spreadsheet header.
type FieldMapping map[string]string

// Complete checks that every required field has a non-empty column.
func (m FieldMapping) Complete() error {
	var missing []string
	for _, f := range RequiredFields {
		if strings.TrimSpace(m[f.Key]) == "" {
			missing = append(missing, f.Key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrIncompleteMapping, strings.Join(missing, ", "))
	}
	return nil
}

// AnalysisConfig is the JSON payload sent in the "config" multipart field.
type AnalysisConfig struct {
	UseDefault   bool         `json:"use_default"`
	ClusterCount int          `json:"cluster_count"`
	Mappings     FieldMapping `json:"mappings,omitempty"`
}

// Validate enforces that mappings are present exactly when uploaded data is used.
func (c AnalysisConfig) Validate() error {
	if c.ClusterCount <= 0 {
		return ErrInvalidClusterCount
	}
	if c.UseDefault {
		if c.Mappings != nil {
			return errors.New("mappings must be omitted when using default data")
		}
		return nil
	}
	if c.Mappings == nil {
		return ErrIncompleteMapping
	}
	return c.Mappings.Complete()
}

// ParseClusterCount reads the cluster-count input as a positive base-10 integer.
func ParseClusterCount(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClusterCount, s)
	}
	if n <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidClusterCount, n)
	}
	return n, nil
}

// SegmentedPoint is one customer in RFM space with its assigned cluster.
type SegmentedPoint struct {
	Recency       float64 `json:"Recency"`
	Frequency     float64 `json:"Frequency"`
	MonetaryValue float64 `json:"MonetaryValue"`
	Cluster       int     `json:"Cluster"`
}

// PlotData is the table the service returns for plotting.
type PlotData struct {
	Data []SegmentedPoint `json:"data"`
}

// PersonaSummary describes the typical customer of one cluster.
type PersonaSummary struct {
	ClusterID    int     `json:"cluster_id"`
	Persona      string  `json:"persona"`
	Description  string  `json:"description"`
	AvgRecency   float64 `json:"avg_recency"`
	AvgFrequency float64 `json:"avg_frequency"`
	AvgMonetary  float64 `json:"avg_monetary"`
}

// Result is a successful analysis response.
type Result struct {
	PlotData    PlotData         `json:"plotData"`
	PersonaData []PersonaSummary `json:"personaData"`
}
