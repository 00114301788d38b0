package dto

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/campus-mts/mts/internal/domain"
	apperrors "github.com/campus-mts/mts/pkg/util/errorutil"
)

// Ticket body keys.
const (
	FieldDepartmentID  = "department_id"
	FieldCategoryID    = "category_id"
	FieldSubcategoryID = "subcategory_id"
	FieldUserID        = "user_id"
	FieldAssetID       = "asset_id"
	FieldPcPartID      = "pc_part_id"
	FieldDescription   = "description"
	FieldResolution    = "resolution"
	FieldStatusID      = "status_id"
	FieldTechnicianID  = "technician_id"
)

// ticketFields keeps the raw JSON of each key so "absent" and "null" stay distinct.
type ticketFields map[string]json.RawMessage

func decodeTicketFields(body []byte) (ticketFields, error) {
	fields := ticketFields{}
	if len(bytes.TrimSpace(body)) == 0 {
		return fields, nil
	}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, apperrors.NewValidationError("request body must be a JSON object", nil)
	}
	return fields, nil
}

// ParseTicketDraft decodes a POST /tickets body.
func ParseTicketDraft(body []byte) (domain.TicketDraft, error) {
	var draft domain.TicketDraft
	fields, err := decodeTicketFields(body)
	if err != nil {
		return draft, err
	}
	ids := []struct {
		key string
		dst *domain.Optional[int64]
	}{
		{FieldDepartmentID, &draft.DepartmentID},
		{FieldCategoryID, &draft.CategoryID},
		{FieldStatusID, &draft.StatusID},
		{FieldSubcategoryID, &draft.SubcategoryID},
		{FieldUserID, &draft.UserID},
		{FieldAssetID, &draft.AssetID},
		{FieldPcPartID, &draft.PcPartID},
		{FieldTechnicianID, &draft.TechnicianID},
	}
	for _, f := range ids {
		if *f.dst, err = fields.id(f.key); err != nil {
			return draft, err
		}
	}
	if draft.Description, err = fields.text(FieldDescription); err != nil {
		return draft, err
	}
	return draft, nil
}

// ParseTicketPatch decodes a PUT /tickets/:id body. Keys not present stay Unset.
func ParseTicketPatch(body []byte) (domain.TicketPatch, error) {
	var patch domain.TicketPatch
	fields, err := decodeTicketFields(body)
	if err != nil {
		return patch, err
	}
	ids := []struct {
		key string
		dst *domain.Optional[int64]
	}{
		{FieldDepartmentID, &patch.DepartmentID},
		{FieldCategoryID, &patch.CategoryID},
		{FieldStatusID, &patch.StatusID},
		{FieldSubcategoryID, &patch.SubcategoryID},
		{FieldUserID, &patch.UserID},
		{FieldAssetID, &patch.AssetID},
		{FieldPcPartID, &patch.PcPartID},
		{FieldTechnicianID, &patch.TechnicianID},
	}
	for _, f := range ids {
		if *f.dst, err = fields.id(f.key); err != nil {
			return patch, err
		}
	}
	if patch.Description, err = fields.text(FieldDescription); err != nil {
		return patch, err
	}
	if patch.Resolution, err = fields.text(FieldResolution); err != nil {
		return patch, err
	}
	return patch, nil
}

// id accepts a JSON integer or a numeric string. null and "" mean SetNull.
func (f ticketFields) id(key string) (domain.Optional[int64], error) {
	raw, ok := f[key]
	if !ok {
		return domain.Unset[int64](), nil
	}
	raw = bytes.TrimSpace(raw)
	if bytes.Equal(raw, []byte("null")) {
		return domain.SetNull[int64](), nil
	}

	var text string
	if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return domain.Optional[int64]{}, apperrors.NewInvalidField(key, "must be a number")
		}
		text = strings.TrimSpace(text)
		if text == "" {
			return domain.SetNull[int64](), nil
		}
	} else {
		var num json.Number
		if err := json.Unmarshal(raw, &num); err != nil {
			return domain.Optional[int64]{}, apperrors.NewInvalidField(key, "must be a number")
		}
		text = num.String()
	}

	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return domain.Optional[int64]{}, apperrors.NewInvalidField(key, "must be a number")
	}
	return domain.SetTo(v), nil
}

func (f ticketFields) text(key string) (domain.Optional[string], error) {
	raw, ok := f[key]
	if !ok {
		return domain.Unset[string](), nil
	}
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		return domain.Optional[string]{}, apperrors.NewInvalidField(key, "must be a string")
	}
	if s == nil {
		return domain.SetNull[string](), nil
	}
	return domain.SetTo(*s), nil
}

// CreateTicketResponse is returned by POST /tickets.
type CreateTicketResponse struct {
	TicketID int64 `json:"ticketId"`
}

// MessageResponse carries a human-readable outcome.
type MessageResponse struct {
	Message string `json:"message"`
}

// TicketResponse is a denormalized ticket row.
type TicketResponse struct {
	ID              int64     `json:"id"`
	DepartmentID    int64     `json:"department_id"`
	DepartmentName  string    `json:"department_name"`
	CategoryID      int64     `json:"category_id"`
	CategoryName    string    `json:"category_name"`
	SubcategoryID   *int64    `json:"subcategory_id"`
	SubcategoryName *string   `json:"subcategory_name"`
	UserID          *int64    `json:"user_id"`
	UserName        *string   `json:"user_name"`
	AssetID         *int64    `json:"asset_id"`
	AssetItemCode   *string   `json:"asset_item_code"`
	PcPartID        *int64    `json:"pc_part_id"`
	PcPartName      *string   `json:"pc_part_name"`
	Description     *string   `json:"description"`
	Resolution      *string   `json:"resolution"`
	StatusID        int64     `json:"status_id"`
	StatusName      string    `json:"status_name"`
	TechnicianID    *int64    `json:"technician_id"`
	TechnicianName  *string   `json:"technician_name"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// NewTicketResponse maps a ticket view.
func NewTicketResponse(v domain.TicketView) TicketResponse {
	return TicketResponse{
		ID:              v.ID,
		DepartmentID:    v.DepartmentID,
		DepartmentName:  v.DepartmentName,
		CategoryID:      v.CategoryID,
		CategoryName:    v.CategoryName,
		SubcategoryID:   v.SubcategoryID,
		SubcategoryName: v.SubcategoryName,
		UserID:          v.UserID,
		UserName:        v.UserName,
		AssetID:         v.AssetID,
		AssetItemCode:   v.AssetItemCode,
		PcPartID:        v.PcPartID,
		PcPartName:      v.PcPartName,
		Description:     v.Description,
		Resolution:      v.Resolution,
		StatusID:        v.StatusID,
		StatusName:      v.StatusName,
		TechnicianID:    v.TechnicianID,
		TechnicianName:  v.TechnicianName,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}

// NewTicketResponses maps a list; the result is never nil.
func NewTicketResponses(views []domain.TicketView) []TicketResponse {
	out := make([]TicketResponse, 0, len(views))
	for _, v := range views {
		out = append(out, NewTicketResponse(v))
	}
	return out
}
