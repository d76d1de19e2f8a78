package model

import "time"

type Category string

const (
	CategoryHomework Category = "Homework"
	CategoryQuiz     Category = "Quiz"
	CategoryPaper    Category = "Paper"
	CategoryProject  Category = "Project"
	CategoryTest     Category = "Test"
	CategoryMidTerm  Category = "Mid-Term"
	CategoryFinal    Category = "Final"
)

var categoryPoints = map[Category]int{
	CategoryHomework: 1,
	CategoryQuiz:     2,
	CategoryPaper:    3,
	CategoryProject:  4,
	CategoryTest:     4,
	CategoryMidTerm:  5,
	CategoryFinal:    10,
}

// Points is the value a completed task of this category adds to the ledger.
// Categories outside the known set are accepted but earn nothing.
func (c Category) Points() int {
	return categoryPoints[c]
}

func (c Category) IsKnown() bool {
	_, ok := categoryPoints[c]
	return ok
}

// KnownCategories lists the built-in categories in ascending point order.
func KnownCategories() []Category {
	return []Category{
		CategoryHomework,
		CategoryQuiz,
		CategoryPaper,
		CategoryProject,
		CategoryTest,
		CategoryMidTerm,
		CategoryFinal,
	}
}

type CategoryValue struct {
	Category Category
	Points   int
}

type TaskStatus string

const (
	TaskStatusAll       TaskStatus = "all"
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusCompleted TaskStatus = "completed"
)

type Task struct {
	ID        int64
	UserID    int64
	Course    string
	Title     string
	Category  Category
	DueAt     time.Time
	Completed bool
	CreatedAt time.Time
}

type TaskFilter struct {
	UserID int64
	Status TaskStatus
}
