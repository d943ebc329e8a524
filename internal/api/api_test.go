package api

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/dmitrijs2005/rosebudthorn/internal/common"
	"github.com/dmitrijs2005/rosebudthorn/internal/datex"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestCreateEntryRequest_NormalizeDefaultsToPublic(t *testing.T) {
	r := CreateEntryRequest{
		UserID:    " u1 ",
		RoseText:  "  a ",
		BudText:   "b",
		ThornText: "c\n",
		Tags:      []string{" work", "", "family", "work"},
	}
	r.Normalize()

	require.NotNil(t, r.IsPublic)
	assert.True(t, *r.IsPublic)
	assert.Equal(t, "u1", r.UserID)
	assert.Equal(t, "a", r.RoseText)
	assert.Equal(t, "c", r.ThornText)
	assert.Equal(t, []string{"work", "family"}, r.Tags)
	assert.NoError(t, r.Validate())
}

func TestCreateEntryRequest_ValidateMissingFields(t *testing.T) {
	tests := []struct {
		name string
		req  CreateEntryRequest
		msg  string
	}{
		{"no user", CreateEntryRequest{RoseText: "a", BudText: "b", ThornText: "c"}, "user_id"},
		{"blank rose", CreateEntryRequest{UserID: "u1", RoseText: "  ", BudText: "b", ThornText: "c"}, "rose_text"},
		{"two missing", CreateEntryRequest{UserID: "u1", RoseText: "a"}, "bud_text, thorn_text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, common.ErrValidation))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestUpdateEntryRequest_Validate(t *testing.T) {
	assert.NoError(t, UpdateEntryRequest{}.Validate())
	assert.NoError(t, UpdateEntryRequest{RoseText: strp("new")}.Validate())

	err := UpdateEntryRequest{BudText: strp("   ")}.Validate()
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestUpdateEntryRequest_NormalizeTags(t *testing.T) {
	tags := []string{"a", " a ", "b"}
	r := UpdateEntryRequest{Tags: &tags, ThornText: strp(" t ")}
	r.Normalize()
	assert.Equal(t, []string{"a", "b"}, *r.Tags)
	assert.Equal(t, "t", *r.ThornText)
}

func TestUpdateEntryRequest_OmitsNilFields(t *testing.T) {
	b, err := json.Marshal(UpdateEntryRequest{RoseText: strp("x")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"rose_text":"x"}`, string(b))
}

func TestNormalizeTags_NeverNil(t *testing.T) {
	assert.NotNil(t, NormalizeTags(nil))
	assert.Empty(t, NormalizeTags([]string{" ", ""}))
}

func TestReactionRequest_Validate(t *testing.T) {
	for _, k := range []string{ReactionLike, ReactionLove, ReactionSupport, ReactionCelebrate} {
		assert.NoError(t, ReactionRequest{ReactionKind: k}.Validate(), k)
	}
	assert.ErrorIs(t, ReactionRequest{ReactionKind: "meh"}.Validate(), common.ErrValidation)
}

func TestCreateGroupRequest(t *testing.T) {
	r := CreateGroupRequest{Name: " Book club ", GroupCode: "ab12cd"}
	r.Normalize()
	assert.Equal(t, "Book club", r.Name)
	assert.Equal(t, "AB12CD", r.GroupCode)
	assert.NoError(t, r.Validate())

	assert.ErrorIs(t, CreateGroupRequest{Name: "x", GroupCode: "ABC"}.Validate(), common.ErrValidation)
	assert.ErrorIs(t, CreateGroupRequest{Name: "x", GroupCode: "ABC-12"}.Validate(), common.ErrValidation)
	assert.ErrorIs(t, CreateGroupRequest{GroupCode: "ABC123"}.Validate(), common.ErrValidation)
}

func TestVerifyCodeResponse_WireName(t *testing.T) {
	b, err := json.Marshal(VerifyCodeResponse{IsAvailable: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"isAvailable":true}`, string(b))
}

func TestEntry_DecodesServerPayload(t *testing.T) {
	payload := `{
		"id":"e1","user_id":"u1","date":"2024-05-01",
		"rose_text":"a","bud_text":"b","thorn_text":"c","is_public":true,
		"tags":["work"],
		"reactions":[{"group_id":"g1","user_reacting_id":"u2","reaction_kind":"love","created_at":"2024-05-01T10:00:00Z"}],
		"created_at":"2024-05-01T09:00:00Z","updated_at":"2024-05-01T09:00:00Z"
	}`
	var e Entry
	require.NoError(t, json.Unmarshal([]byte(payload), &e))

	assert.Equal(t, datex.MustParse("2024-05-01"), e.Date)
	if diff := cmp.Diff([]string{"work"}, e.Tags); diff != "" {
		t.Fatalf("tags mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, e.Reactions, 1)
	assert.Equal(t, "love", e.Reactions[0].ReactionKind)
}

func TestGroup_HasMember(t *testing.T) {
	g := Group{Members: []string{"u1", "u2"}}
	assert.True(t, g.HasMember("u2"))
	assert.False(t, g.HasMember("u3"))
}

func TestAuthRequests_Validate(t *testing.T) {
	assert.NoError(t, RegisterRequest{Username: "alice", Password: "secret1"}.Validate())
	assert.ErrorIs(t, RegisterRequest{Username: "al", Password: "secret1"}.Validate(), common.ErrValidation)
	assert.ErrorIs(t, RegisterRequest{Username: "alice", Password: "123"}.Validate(), common.ErrValidation)
	assert.ErrorIs(t, LoginRequest{Username: "alice"}.Validate(), common.ErrValidation)
	assert.ErrorIs(t, RefreshRequest{}.Validate(), common.ErrValidation)
}
