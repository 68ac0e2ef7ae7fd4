package query

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Filter(t *testing.T) {
	t.Parallel()

	params := url.Values{}
	params.Set("duration", "5")
	params.Set("price[gte]", "500")
	params.Set("price[lt]", "2000")
	params.Set("ratingsAverage[gte]", "4.7")
	params.Set("sort", "-price")
	params.Set("page", "2")
	params.Set("limit", "10")
	params.Set("fields", "name,price")

	d := Parse(params)

	require.Len(t, d.Filters, 4)
	assert.Equal(t, []Condition{
		{Column: "duration", Op: OpEq, Value: "5"},
		{Column: "price", Op: OpGte, Value: "500"},
		{Column: "price", Op: OpLt, Value: "2000"},
		{Column: "ratings_average", Op: OpGte, Value: "4.7"},
	}, d.Filters)

	// reserved keys never become filters
	for _, f := range d.Filters {
		assert.NotContains(t, []string{"page", "sort", "limit", "fields"}, f.Column)
	}
}

func TestParse_DoesNotMutateParams(t *testing.T) {
	t.Parallel()

	params := url.Values{}
	params.Set("sort", "-price")
	params.Set("difficulty", "easy")

	_ = Parse(params)

	assert.Equal(t, "-price", params.Get("sort"))
	assert.Equal(t, "easy", params.Get("difficulty"))
	assert.Len(t, params, 2)
}

func TestParse_OperatorSuffixes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		key  string
		want Op
	}{
		{"price[gt]", OpGt},
		{"price[gte]", OpGte},
		{"price[lt]", OpLt},
		{"price[lte]", OpLte},
		{"price", OpEq},
		{"price[between]", OpEq}, // unknown suffix is part of no mapping; key dropped as not an identifier
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.key, func(t *testing.T) {
			t.Parallel()
			params := url.Values{tc.key: []string{"1"}}
			d := Parse(params)
			if tc.key == "price[between]" {
				assert.Empty(t, d.Filters)
				return
			}
			require.Len(t, d.Filters, 1)
			assert.Equal(t, tc.want, d.Filters[0].Op)
			assert.Equal(t, "price", d.Filters[0].Column)
		})
	}
}

func TestParse_DropsUnsafeKeys(t *testing.T) {
	t.Parallel()

	params := url.Values{}
	params.Set("price; DROP TABLE tours", "1")
	params.Set("name--", "x")
	params.Set("difficulty", "easy")

	d := Parse(params)

	require.Len(t, d.Filters, 1)
	assert.Equal(t, "difficulty", d.Filters[0].Column)
}

func TestParse_Sort(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		raw  string
		want []Order
	}{
		{
			name: "descending then ascending",
			raw:  "-price,ratingsAverage",
			want: []Order{{Column: "price", Desc: true}, {Column: "ratings_average", Desc: false}},
		},
		{
			name: "single ascending",
			raw:  "duration",
			want: []Order{{Column: "duration", Desc: false}},
		},
		{
			name: "default is newest first",
			raw:  "",
			want: []Order{{Column: "created_at", Desc: true}},
		},
		{
			name: "garbage specifiers fall back to default",
			raw:  "price;drop,--",
			want: []Order{{Column: "created_at", Desc: true}},
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			params := url.Values{}
			if tc.raw != "" {
				params.Set("sort", tc.raw)
			}
			assert.Equal(t, tc.want, Parse(params).Sort)
		})
	}
}

func TestParse_Fields(t *testing.T) {
	t.Parallel()

	params := url.Values{}
	params.Set("fields", "name,duration,difficulty,price")
	d := Parse(params)
	assert.Equal(t, []string{"name", "duration", "difficulty", "price"}, d.Fields)

	assert.Nil(t, Parse(url.Values{}).Fields)
}

func TestParse_Pagination(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		page      string
		limit     string
		wantPage  int
		wantLimit int
		wantSkip  int
	}{
		{"defaults", "", "", 1, 100, 0},
		{"explicit", "3", "10", 3, 10, 20},
		{"first page", "1", "25", 1, 25, 0},
		{"large", "41", "7", 41, 7, 280},
		{"non-numeric page", "abc", "10", 1, 10, 0},
		{"non-numeric limit", "2", "xyz", 2, 100, 100},
		{"zero falls back", "0", "0", 1, 100, 0},
		{"negative falls back", "-3", "-1", 1, 100, 0},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			params := url.Values{}
			if tc.page != "" {
				params.Set("page", tc.page)
			}
			if tc.limit != "" {
				params.Set("limit", tc.limit)
			}
			d := Parse(params)
			assert.Equal(t, tc.wantPage, d.Page)
			assert.Equal(t, tc.wantLimit, d.Limit)
			assert.Equal(t, tc.wantSkip, d.Skip())
		})
	}
}

func TestSkip_Property(t *testing.T) {
	t.Parallel()

	// skip == (page-1)*limit for all positive page/limit pairs
	for page := 1; page <= 7; page++ {
		for limit := 1; limit <= 120; limit += 17 {
			d := Descriptor{Page: page, Limit: limit}
			assert.Equal(t, (page-1)*limit, d.Skip())
		}
	}
}

func TestToColumn(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"ratingsAverage": "ratings_average",
		"maxGroupSize":   "max_group_size",
		"price":          "price",
		"createdAt":      "created_at",
	}
	for in, want := range cases {
		assert.Equal(t, want, toColumn(in))
	}
}
