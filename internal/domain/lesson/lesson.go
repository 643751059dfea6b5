package lesson

import "sort"

// Segment is one spoken chunk of a lesson.
type Segment struct {
	ID   string `json:"id" validate:"required"`
	Type string `json:"type"` // intro, definition, example, recap, ...
	Text string `json:"text" validate:"required"`
}

// Unit is a single lesson within a course.
type Unit struct {
	ID        string    `json:"lesson_id" validate:"required"`
	Category  string    `json:"category"`
	Grade     int       `json:"grade"`
	Order     int       `json:"order"`
	Title     string    `json:"title" validate:"required"`
	Objective string    `json:"objective"`
	Segments  []Segment `json:"segments" validate:"dive"`
}

// Bank is the structured lesson collection for one course.
type Bank struct {
	CourseID string `json:"course_id" validate:"required"`
	Title    string `json:"title"`
	Grades   []int  `json:"grades"`
	Lessons  []Unit `json:"lessons" validate:"dive"`
}

// Cursor marks where a learner stopped inside the flattened segment stream.
type Cursor struct {
	SegmentIndex int   `json:"segmentIndex"`
	UpdatedAt    int64 `json:"updatedAt"` // unix millis
}

// Segments flattens lessons in course order, optionally filtered by
// category ("" = all) and grade (nil = all).
func (b *Bank) Segments(category string, grade *int) []Segment {
	lessons := make([]Unit, 0, len(b.Lessons))
	for _, l := range b.Lessons {
		if category != "" && l.Category != category {
			continue
		}
		if grade != nil && l.Grade != *grade {
			continue
		}
		lessons = append(lessons, l)
	}

	sort.SliceStable(lessons, func(i, j int) bool {
		return lessons[i].Order < lessons[j].Order
	})

	var out []Segment
	for _, l := range lessons {
		out = append(out, l.Segments...)
	}
	return out
}
