package ofx

import (
	"testing"
	"time"

	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func importCategories() []model.Category {
	return []model.Category{
		{ID: "lunch", Name: "午餐", Start: model.TimeOfDay{Hour: 11}, End: model.TimeOfDay{Hour: 13, Minute: 59}},
		{ID: "late", Name: "宵夜", Start: model.TimeOfDay{Hour: 20, Minute: 30}, End: model.TimeOfDay{Hour: 4, Minute: 59}},
	}
}

func TestBuildPlan(t *testing.T) {
	noon := testutil.Date(2024, time.January, 15, 12, 0)
	night := testutil.Date(2024, time.January, 16, 1, 30)
	morning := testutil.Date(2024, time.January, 17, 9, 0)

	drafts := []Draft{
		{Date: noon, Amount: 26, Payee: "Starbucks"},
		{Date: night, Amount: 80, Payee: "Night Market"},
		{Date: morning, Amount: 40, Payee: "Bakery"},
	}

	t.Run("categories resolve from posting time", func(t *testing.T) {
		plan := BuildPlan(drafts, nil, importCategories(), "")

		require.Len(t, plan.Entries, 3)
		assert.Zero(t, plan.Duplicates)
		assert.Equal(t, "午餐", plan.Entries[0].CategoryName)
		assert.Equal(t, "宵夜", plan.Entries[1].CategoryName, "wraparound window")
		assert.Equal(t, model.UnclassifiedName, plan.Entries[2].CategoryName)
		assert.Equal(t, "Starbucks", plan.Entries[0].Note)
		assert.Equal(t, int64(26), plan.Entries[0].Amount)
		assert.Equal(t, noon, plan.Entries[0].Date)
	})

	t.Run("fixed category overrides resolution", func(t *testing.T) {
		plan := BuildPlan(drafts, nil, importCategories(), "交通")

		for _, e := range plan.Entries {
			assert.Equal(t, "交通", e.CategoryName)
		}
	})

	t.Run("existing and repeated lines are duplicates", func(t *testing.T) {
		existing := testutil.Expense("x", noon.Add(30*time.Second), 26, "午餐")
		existing.Note = "Starbucks"

		repeated := append([]Draft{}, drafts...)
		repeated = append(repeated, drafts[1])

		plan := BuildPlan(repeated, []model.Expense{existing}, importCategories(), "")

		assert.Equal(t, 2, plan.Duplicates)
		require.Len(t, plan.Entries, 2)
		assert.Equal(t, "Night Market", plan.Entries[0].Note)
	})

	t.Run("same minute different amount is kept", func(t *testing.T) {
		existing := testutil.Expense("x", noon, 27, "午餐")
		existing.Note = "Starbucks"

		plan := BuildPlan(drafts[:1], []model.Expense{existing}, importCategories(), "")
		assert.Len(t, plan.Entries, 1)
	})
}
