// AngelaMos | 2026
// dto_test.go

package post

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhpc-ltd/blog-api/internal/core"
)

func validInput() PostInput {
	return PostInput{
		Title:      "T",
		CategoryID: "6f1c2a7e-3b9d-4c1e-9a57-0e2d8b4f1a11",
		Tags:       []string{"a"},
		Content:    "<p>body</p>",
	}
}

func TestPostInputRequiresTags(t *testing.T) {
	v := NewValidator()

	in := validInput()
	in.Tags = []string{}
	in.Normalize()
	err := v.Struct(in)
	require.Error(t, err)
	assert.Contains(t, core.FormatValidationError(err), "Tags must contain at least 1 items")

	in.Tags = []string{"a"}
	assert.NoError(t, v.Struct(in))
}

func TestPostInputRules(t *testing.T) {
	v := NewValidator()
	short := "too short"
	long := string(make([]byte, 301))

	tests := []struct {
		name   string
		mutate func(*PostInput)
	}{
		{"empty title", func(in *PostInput) { in.Title = "" }},
		{"long title", func(in *PostInput) { in.Title = string(make([]byte, 101)) }},
		{"bad category", func(in *PostInput) { in.CategoryID = "hydro" }},
		{"short summary", func(in *PostInput) { in.Summary = &short }},
		{"long summary", func(in *PostInput) { in.Summary = &long }},
		{"too many tags", func(in *PostInput) {
			in.Tags = []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11"}
		}},
		{"empty tag", func(in *PostInput) { in.Tags = []string{""} }},
		{"no content", func(in *PostInput) { in.Content = "" }},
		{"bad image", func(in *PostInput) { in.Image = "not a url" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			assert.Error(t, v.Struct(in))
		})
	}
}

func TestPostInputNormalize(t *testing.T) {
	blank := "   "
	in := PostInput{
		Title:   "  Title  ",
		Summary: &blank,
		Tags:    []string{" Hydro ", "hydro", "Solar", "HYDRO"},
	}

	in.Normalize()

	assert.Equal(t, "Title", in.Title)
	assert.Nil(t, in.Summary)
	assert.Equal(t, []string{"Hydro", "Solar"}, in.Tags)
}

func TestListParamsNormalize(t *testing.T) {
	p := ListParams{Page: 0, PageSize: 500, Search: " dam "}
	p.Normalize()

	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 100, p.PageSize)
	assert.Equal(t, "dam", p.Search)

	p = ListParams{Page: 3, PageSize: 0}
	p.Normalize()
	assert.Equal(t, 12, p.PageSize)
	assert.Equal(t, 24, p.Offset())
}

func TestToPostResponse(t *testing.T) {
	v := &View{
		Post: Post{
			ID: "p1", Title: "T", Content: "<p>x</p>", AuthorID: "u1",
			CategoryID: "c1", Status: Published, CreatedAt: time.Now(),
		},
		AuthorName:   "asha",
		CategoryName: "Hydro",
		LikeCount:    3,
		LikedByMe:    true,
	}

	anon := ToPostResponse(v, false, false)
	assert.Empty(t, anon.Content)
	assert.Nil(t, anon.LikedByMe)
	assert.Equal(t, []string{}, anon.Tags)
	assert.Equal(t, "asha", anon.Author.Name)
	assert.Equal(t, 3, anon.LikeCount)

	authed := ToPostResponse(v, true, true)
	assert.Equal(t, "<p>x</p>", authed.Content)
	require.NotNil(t, authed.LikedByMe)
	assert.True(t, *authed.LikedByMe)
}
