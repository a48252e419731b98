package model

import "github.com/google/uuid"

// UnclassifiedName is stored when no category interval matches the entry time.
const UnclassifiedName = "未分類"

// DefaultMonthlyBudget applies when no positive budget has been saved.
const DefaultMonthlyBudget int64 = 10000

// SuggestedCategoryNames is the pick-list offered when entering an expense by hand.
var SuggestedCategoryNames = []string{
	"早餐", "午餐", "晚餐", "宵夜",
	"飲品", "購物", "點心",
	"交通", "娛樂", "日用品",
	"禮物", "洗衣服", "藥物",
}

// DefaultCategories returns the seed set with fresh identifiers. The meal
// windows tile the whole day, so the all-day entries placed after them only
// apply when chosen explicitly.
func DefaultCategories() []Category {
	seed := []Category{
		{Name: "早餐", Start: TimeOfDay{5, 0}, End: TimeOfDay{10, 59}, Color: ColorYellow},
		{Name: "午餐", Start: TimeOfDay{11, 0}, End: TimeOfDay{13, 59}, Color: ColorOrange},
		{Name: "點心", Start: TimeOfDay{14, 0}, End: TimeOfDay{16, 29}, Color: ColorPink},
		{Name: "晚餐", Start: TimeOfDay{16, 30}, End: TimeOfDay{20, 29}, Color: ColorGreen},
		{Name: "宵夜", Start: TimeOfDay{20, 30}, End: TimeOfDay{4, 59}, Color: ColorPurple},
		{Name: "交通", Start: TimeOfDay{0, 0}, End: TimeOfDay{23, 59}, Color: ColorBlue},
		{Name: "娛樂", Start: TimeOfDay{0, 0}, End: TimeOfDay{23, 59}, Color: ColorRed},
	}
	for i := range seed {
		seed[i].ID = uuid.NewString()
	}
	return seed
}
