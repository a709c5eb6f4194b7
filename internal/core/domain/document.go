package domain

type DocumentStatus string

const (
	StatusProcessing DocumentStatus = "processing"
	StatusCompleted  DocumentStatus = "completed"
	StatusError      DocumentStatus = "error"
)

// Valid reports whether s is one of the known lifecycle tags.
func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusProcessing, StatusCompleted, StatusError:
		return true
	default:
		return false
	}
}

func (s DocumentStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusError
}

// CanTransition describes the documented lifecycle only. The store does not
// consult it; callers set statuses directly.
func (s DocumentStatus) CanTransition(to DocumentStatus) bool {
	return s == StatusProcessing && to.Terminal()
}

// ExtractedData is the fixed contract metadata attached to a completed document.
type ExtractedData struct {
	Buyer             string `json:"buyer" yaml:"buyer"`
	Seller            string `json:"seller" yaml:"seller"`
	AgreementDate     string `json:"agreementDate" yaml:"agreementDate"`
	PropertyAddress   string `json:"propertyAddress" yaml:"propertyAddress"`
	Rent              string `json:"rent" yaml:"rent"`
	LockInPeriod      string `json:"lockInPeriod" yaml:"lockInPeriod"`
	TerminationClause string `json:"terminationClause" yaml:"terminationClause"`
}

type Document struct {
	ID            string         `json:"id" yaml:"id"`
	Name          string         `json:"name" yaml:"name"`
	UploadedAt    string         `json:"uploadedAt" yaml:"uploadedAt"`
	Status        DocumentStatus `json:"status" yaml:"status"`
	ExtractedData *ExtractedData `json:"extractedData,omitempty" yaml:"extractedData,omitempty"`
	Summary       *string        `json:"summary,omitempty" yaml:"summary,omitempty"`
	FileURL       *string        `json:"fileUrl,omitempty" yaml:"fileUrl,omitempty"`
}

// Clone returns a copy that shares no pointers with d.
func (d Document) Clone() Document {
	out := d
	if d.ExtractedData != nil {
		data := *d.ExtractedData
		out.ExtractedData = &data
	}
	out.Summary = cloneString(d.Summary)
	out.FileURL = cloneString(d.FileURL)
	return out
}

// DocumentPatch is a partial document update. Nil fields are left untouched.
type DocumentPatch struct {
	ID            *string         `json:"id,omitempty"`
	Name          *string         `json:"name,omitempty"`
	UploadedAt    *string         `json:"uploadedAt,omitempty"`
	Status        *DocumentStatus `json:"status,omitempty"`
	ExtractedData *ExtractedData  `json:"extractedData,omitempty"`
	Summary       *string         `json:"summary,omitempty"`
	FileURL       *string         `json:"fileUrl,omitempty"`
}

// Apply returns the shallow merge of d and p.
func (p DocumentPatch) Apply(d Document) Document {
	out := d.Clone()
	if p.ID != nil {
		out.ID = *p.ID
	}
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.UploadedAt != nil {
		out.UploadedAt = *p.UploadedAt
	}
	if p.Status != nil {
		out.Status = *p.Status
	}
	if p.ExtractedData != nil {
		data := *p.ExtractedData
		out.ExtractedData = &data
	}
	if p.Summary != nil {
		out.Summary = cloneString(p.Summary)
	}
	if p.FileURL != nil {
		out.FileURL = cloneString(p.FileURL)
	}
	return out
}

func (p DocumentPatch) Empty() bool {
	return p.ID == nil && p.Name == nil && p.UploadedAt == nil && p.Status == nil &&
		p.ExtractedData == nil && p.Summary == nil && p.FileURL == nil
}

type User struct {
	IsAuthenticated bool   `json:"isAuthenticated"`
	Name            string `json:"name"`
	Email           string `json:"email"`
}

// AppState is a point-in-time copy of the store contents.
type AppState struct {
	Documents       []Document `json:"documents"`
	CurrentDocument *Document  `json:"currentDocument"`
	IsLoading       bool       `json:"isLoading"`
	User            *User      `json:"user"`
}

// DashboardStats mirrors the dashboard counters.
type DashboardStats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Processing int `json:"processing"`
	Error      int `json:"error"`
}

func CountByStatus(docs []Document) DashboardStats {
	stats := DashboardStats{Total: len(docs)}
	for _, doc := range docs {
		switch doc.Status {
		case StatusCompleted:
			stats.Completed++
		case StatusProcessing:
			stats.Processing++
		case StatusError:
			stats.Error++
		}
	}
	return stats
}

func StringPtr(v string) *string { return &v }

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	s := *v
	return &s
}

// Extraction is the output of the (mock) field extractor.
type Extraction struct {
	Data    ExtractedData `json:"extractedData"`
	Summary string        `json:"summary"`
}

// UploadResult is returned to the uploader; PageCount is informational and
// not kept in the store.
type UploadResult struct {
	Document  Document `json:"document"`
	PageCount int      `json:"pageCount"`
}
