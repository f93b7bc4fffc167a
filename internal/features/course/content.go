package course

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edumart/edumart-server-go/pkg/validation"
)

// LectureInput carries data for adding a lecture to a chapter.
type LectureInput struct {
	Title           string
	DurationMinutes int
	VideoURL        string
	IsPreviewFree   bool
}

// OrderUpdate assigns a new order value to a chapter or lecture id.
type OrderUpdate struct {
	ID    uuid.UUID `json:"id" binding:"required"`
	Order int       `json:"order"`
}

// AddChapter appends a chapter to the course owned by educatorID. The new
// chapter takes order max(existing)+1.
func AddChapter(db *gorm.DB, courseID uuid.UUID, educatorID, title string) (Chapter, error) {
	if strings.TrimSpace(title) == "" {
		return Chapter{}, ErrTitleRequired
	}

	course, err := GetOwned(db, courseID, educatorID)
	if err != nil {
		return Chapter{}, err
	}

	chapter := Chapter{
		CourseID: course.ID,
		Title:    strings.TrimSpace(title),
		Order:    nextChapterOrder(course.Chapters),
	}

	if err := db.Create(&chapter).Error; err != nil {
		return Chapter{}, err
	}

	return chapter, nil
}

// AddLecture appends a lecture to a chapter of the course owned by
// educatorID. The video URL must match an allowed video host; the new
// lecture takes order max(existing in chapter)+1.
func AddLecture(db *gorm.DB, courseID, chapterID uuid.UUID, educatorID string, input LectureInput) (Lecture, error) {
	if strings.TrimSpace(input.Title) == "" {
		return Lecture{}, ErrTitleRequired
	}

	if err := validation.ValidateVideoURL(input.VideoURL); err != nil {
		return Lecture{}, ErrInvalidVideoURL
	}

	course, err := GetOwned(db, courseID, educatorID)
	if err != nil {
		return Lecture{}, err
	}

	chapter, ok := findChapter(course.Chapters, chapterID)
	if !ok {
		return Lecture{}, ErrChapterNotFound
	}

	lecture := Lecture{
		ChapterID:       chapter.ID,
		Title:           strings.TrimSpace(input.Title),
		DurationMinutes: input.DurationMinutes,
		VideoURL:        strings.TrimSpace(input.VideoURL),
		IsPreviewFree:   input.IsPreviewFree,
		Order:           nextLectureOrder(chapter.Lectures),
	}

	if err := db.Create(&lecture).Error; err != nil {
		return Lecture{}, err
	}

	return lecture, nil
}

// DeleteLecture removes a lecture from a chapter of an owned course.
func DeleteLecture(db *gorm.DB, courseID, chapterID, lectureID uuid.UUID, educatorID string) error {
	course, err := GetOwned(db, courseID, educatorID)
	if err != nil {
		return err
	}

	chapter, ok := findChapter(course.Chapters, chapterID)
	if !ok {
		return ErrChapterNotFound
	}

	result := db.Delete(&Lecture{}, "id = ? AND chapter_id = ?", lectureID, chapter.ID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLectureNotFound
	}
	return nil
}

// ReorderChapters overwrites order values for the matching chapters of an
// owned course. Updates naming unknown chapter ids are skipped without
// error.
func ReorderChapters(db *gorm.DB, courseID uuid.UUID, educatorID string, updates []OrderUpdate) error {
	course, err := GetOwned(db, courseID, educatorID)
	if err != nil {
		return err
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, update := range updates {
			if _, ok := findChapter(course.Chapters, update.ID); !ok {
				continue
			}
			if err := tx.Model(&Chapter{}).
				Where("id = ? AND course_id = ?", update.ID, course.ID).
				Update("order", update.Order).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// ReorderLectures overwrites order values for the matching lectures of a
// chapter. Updates naming unknown lecture ids are skipped without error.
func ReorderLectures(db *gorm.DB, courseID, chapterID uuid.UUID, educatorID string, updates []OrderUpdate) error {
	course, err := GetOwned(db, courseID, educatorID)
	if err != nil {
		return err
	}

	chapter, ok := findChapter(course.Chapters, chapterID)
	if !ok {
		return ErrChapterNotFound
	}

	known := make(map[uuid.UUID]struct{}, len(chapter.Lectures))
	for _, lecture := range chapter.Lectures {
		known[lecture.ID] = struct{}{}
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, update := range updates {
			if _, ok := known[update.ID]; !ok {
				continue
			}
			if err := tx.Model(&Lecture{}).
				Where("id = ? AND chapter_id = ?", update.ID, chapter.ID).
				Update("order", update.Order).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// SanitizeForViewer blanks the video URL of every non-free-preview lecture
// when the viewer is not enrolled, and sorts content by order. This
// read-time blanking is the sole content-protection mechanism.
func SanitizeForViewer(course *Course, isEnrolled bool) {
	SortContent(course)

	if isEnrolled {
		return
	}

	for ci := range course.Chapters {
		for li := range course.Chapters[ci].Lectures {
			if !course.Chapters[ci].Lectures[li].IsPreviewFree {
				course.Chapters[ci].Lectures[li].VideoURL = ""
			}
		}
	}
}

// SortContent sorts chapters and their lectures by order ascending.
func SortContent(course *Course) {
	sort.SliceStable(course.Chapters, func(i, j int) bool {
		return course.Chapters[i].Order < course.Chapters[j].Order
	})
	for ci := range course.Chapters {
		lectures := course.Chapters[ci].Lectures
		sort.SliceStable(lectures, func(i, j int) bool {
			return lectures[i].Order < lectures[j].Order
		})
	}
}

// IsEnrolled reports whether the user appears in the course's enrolled set.
func IsEnrolled(db *gorm.DB, courseID uuid.UUID, userID string) (bool, error) {
	if userID == "" {
		return false, nil
	}

	var count int64
	err := db.Table("enrollments").
		Where("course_id = ? AND user_id = ?", courseID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// AverageRating returns the mean rating for a course, 0 when unrated.
func AverageRating(db *gorm.DB, courseID uuid.UUID) (float64, error) {
	var avg float64
	err := db.Table("ratings").
		Where("course_id = ?", courseID).
		Select("COALESCE(AVG(value), 0)").
		Scan(&avg).Error
	return avg, err
}

func nextChapterOrder(chapters []Chapter) int {
	max := 0
	for _, chapter := range chapters {
		if chapter.Order > max {
			max = chapter.Order
		}
	}
	return max + 1
}

func nextLectureOrder(lectures []Lecture) int {
	max := 0
	for _, lecture := range lectures {
		if lecture.Order > max {
			max = lecture.Order
		}
	}
	return max + 1
}

func findChapter(chapters []Chapter, id uuid.UUID) (Chapter, bool) {
	for _, chapter := range chapters {
		if chapter.ID == id {
			return chapter, true
		}
	}
	return Chapter{}, false
}
