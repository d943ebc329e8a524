package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/rosebudthorn/internal/common"
)

type Group struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	GroupCode string    `json:"group_code"`
	CreatedBy string    `json:"created_by"`
	Members   []string  `json:"members"`
	CreatedAt time.Time `json:"created_at"`
}

// HasMember reports whether userID is in g.Members.
func (g Group) HasMember(userID string) bool {
	for _, m := range g.Members {
		if m == userID {
			return true
		}
	}
	return false
}

type CreateGroupRequest struct {
	Name      string `json:"name"`
	GroupCode string `json:"group_code"`
}

func (r *CreateGroupRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.GroupCode = strings.ToUpper(strings.TrimSpace(r.GroupCode))
}

func (r CreateGroupRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("%w: name is required", common.ErrValidation)
	}
	return ValidateGroupCode(r.GroupCode)
}

// ValidateGroupCode checks length and alphabet of a group code.
func ValidateGroupCode(code string) error {
	if len(code) != common.GroupCodeLength {
		return fmt.Errorf("%w: group_code must be %d characters", common.ErrValidation, common.GroupCodeLength)
	}
	for _, r := range code {
		if !strings.ContainsRune(common.GroupCodeAlphabet, r) {
			return fmt.Errorf("%w: group_code may only contain A-Z and 0-9", common.ErrValidation)
		}
	}
	return nil
}

type VerifyCodeResponse struct {
	IsAvailable bool `json:"isAvailable"`
}
