package models

// AssignmentContext is the read-only assignment/course projection used to
// build the EduLegit registration payload.
type AssignmentContext struct {
	ID                   int64   `db:"id"`
	CourseRef            int64   `db:"course_ref"`
	Name                 string  `db:"name"`
	Intro                *string `db:"intro"`
	Activity             *string `db:"activity"`
	AllowSubmissionsFrom *int64  `db:"allow_submissions_from"`
	DueDate              *int64  `db:"due_date"`
	GradingDueDate       *int64  `db:"grading_due_date"`
	CourseShortName      string  `db:"course_short_name"`
	CourseFullName       string  `db:"course_full_name"`
	CourseSummary        *string `db:"course_summary"`
	CourseStartDate      *int64  `db:"course_start_date"`
	CourseEndDate        *int64  `db:"course_end_date"`
}
