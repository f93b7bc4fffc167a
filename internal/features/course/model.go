package course

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edumart/edumart-server-go/pkg/pagination"
	"github.com/edumart/edumart-server-go/pkg/types"
)

// Course is a sellable unit of educational content composed of ordered
// chapters. Chapters and lectures are owned by the course: they cascade on
// delete and have no independent lifecycle.
type Course struct {
	types.BaseModel

	EducatorID   string      `gorm:"type:varchar(64);not null;index;column:educator_id" json:"educatorId"`
	Title        string      `gorm:"type:varchar(200);not null" json:"title"`
	Description  string      `gorm:"type:text" json:"description"`
	Price        types.Money `gorm:"type:numeric(10,2);not null" json:"price"`
	Discount     int         `gorm:"type:int;not null;default:0" json:"discount"`
	Published    bool        `gorm:"type:boolean;not null;default:true;column:is_published" json:"isPublished"`
	ThumbnailURL string      `gorm:"type:text;column:thumbnail_url" json:"thumbnailUrl"`

	Chapters []Chapter `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"chapters,omitempty"`
}

// TableName overrides the default table name.
func (Course) TableName() string { return "courses" }

// Chapter groups lectures under a course. Order values need not be
// contiguous; they only define sort order.
type Chapter struct {
	types.BaseModel

	CourseID uuid.UUID `gorm:"type:uuid;not null;index;column:course_id" json:"courseId"`
	Title    string    `gorm:"type:varchar(200);not null" json:"title"`
	Order    int       `gorm:"type:int;not null;default:0" json:"order"`

	Lectures []Lecture `gorm:"foreignKey:ChapterID;constraint:OnDelete:CASCADE" json:"lectures,omitempty"`
}

// TableName overrides the default table name.
func (Chapter) TableName() string { return "chapters" }

// Lecture is the leaf content unit. The video URL must point at an allowed
// video host at creation time; read-time blanking for non-enrolled viewers
// is the only other content protection.
type Lecture struct {
	types.BaseModel

	ChapterID       uuid.UUID `gorm:"type:uuid;not null;index;column:chapter_id" json:"chapterId"`
	Title           string    `gorm:"type:varchar(200);not null" json:"title"`
	DurationMinutes int       `gorm:"type:int;not null;default:0;column:duration_minutes" json:"durationMinutes"`
	VideoURL        string    `gorm:"type:text;column:video_url" json:"lectureUrl"`
	IsPreviewFree   bool      `gorm:"type:boolean;not null;default:false;column:is_preview_free" json:"isPreviewFree"`
	Order           int       `gorm:"type:int;not null;default:0" json:"order"`
}

// TableName overrides the default table name.
func (Lecture) TableName() string { return "lectures" }

// ListFilters defines catalog query filters.
type ListFilters struct {
	Keyword       string
	EducatorID    string
	PublishedOnly bool
}

// CreateInput carries data for creating a new course.
type CreateInput struct {
	EducatorID   string
	Title        string
	Description  string
	Price        types.Money
	Discount     int
	Published    *bool
	ThumbnailURL string
}

// UpdateInput captures mutable course fields.
type UpdateInput struct {
	Title                *string
	DescriptionProvided  bool
	Description          string
	Price                *types.Money
	Discount             *int
	Published            *bool
	ThumbnailURLProvided bool
	ThumbnailURL         string
}

// List retrieves paginated courses with filters, ordered newest first.
func List(db *gorm.DB, filters ListFilters, params pagination.Params) ([]Course, int64, error) {
	query := db.Model(&Course{})

	if filters.PublishedOnly {
		query = query.Where("is_published = ?", true)
	}

	if filters.EducatorID != "" {
		query = query.Where("educator_id = ?", filters.EducatorID)
	}

	if filters.Keyword != "" {
		keyword := "%" + strings.ToLower(filters.Keyword) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", keyword, keyword)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var courses []Course
	err := query.
		Order("created_at DESC").
		Offset(params.Skip).
		Limit(params.Limit).
		Find(&courses).Error

	return courses, total, err
}

// Get retrieves a course with its chapters and lectures sorted by order.
func Get(db *gorm.DB, id uuid.UUID) (Course, error) {
	var course Course
	err := db.
		Preload("Chapters", func(db *gorm.DB) *gorm.DB {
			return db.Order("\"order\" ASC")
		}).
		Preload("Chapters.Lectures", func(db *gorm.DB) *gorm.DB {
			return db.Order("\"order\" ASC")
		}).
		First(&course, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return course, ErrCourseNotFound
		}
		return course, err
	}
	return course, nil
}

// GetOwned retrieves a course and verifies the caller is its educator.
func GetOwned(db *gorm.DB, id uuid.UUID, educatorID string) (Course, error) {
	course, err := Get(db, id)
	if err != nil {
		return course, err
	}
	if course.EducatorID != educatorID {
		return course, ErrNotCourseEducator
	}
	return course, nil
}

// Create inserts a new course.
func Create(db *gorm.DB, input CreateInput) (Course, error) {
	if strings.TrimSpace(input.Title) == "" {
		return Course{}, ErrTitleRequired
	}
	if input.Discount < 0 || input.Discount > 100 {
		return Course{}, ErrInvalidDiscount
	}
	if input.Price.IsNegative() {
		return Course{}, ErrInvalidPrice
	}

	published := true
	if input.Published != nil {
		published = *input.Published
	}

	course := Course{
		EducatorID:   input.EducatorID,
		Title:        strings.TrimSpace(input.Title),
		Description:  input.Description,
		Price:        input.Price,
		Discount:     input.Discount,
		Published:    published,
		ThumbnailURL: input.ThumbnailURL,
	}

	if err := db.Create(&course).Error; err != nil {
		return Course{}, err
	}

	return course, nil
}

// Update modifies an existing course owned by educatorID.
func Update(db *gorm.DB, id uuid.UUID, educatorID string, input UpdateInput) (Course, error) {
	course, err := GetOwned(db, id, educatorID)
	if err != nil {
		return course, err
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return course, ErrTitleRequired
		}
		course.Title = strings.TrimSpace(*input.Title)
	}

	if input.DescriptionProvided {
		course.Description = input.Description
	}

	if input.Price != nil {
		if input.Price.IsNegative() {
			return course, ErrInvalidPrice
		}
		course.Price = *input.Price
	}

	if input.Discount != nil {
		if *input.Discount < 0 || *input.Discount > 100 {
			return course, ErrInvalidDiscount
		}
		course.Discount = *input.Discount
	}

	if input.Published != nil {
		course.Published = *input.Published
	}

	if input.ThumbnailURLProvided {
		course.ThumbnailURL = input.ThumbnailURL
	}

	if err := db.Omit("Chapters").Save(&course).Error; err != nil {
		return course, err
	}

	return course, nil
}

// Delete removes a course owned by educatorID; chapters and lectures cascade.
func Delete(db *gorm.DB, id uuid.UUID, educatorID string) error {
	if _, err := GetOwned(db, id, educatorID); err != nil {
		return err
	}

	result := db.Delete(&Course{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCourseNotFound
	}
	return nil
}

// TotalLectures counts the lectures across all chapters of a course. The
// count is always read live: completion percentages derive from it and must
// track content edits.
func TotalLectures(db *gorm.DB, courseID uuid.UUID) (int64, error) {
	var total int64
	err := db.Table("lectures").
		Joins("JOIN chapters ON chapters.id = lectures.chapter_id").
		Where("chapters.course_id = ?", courseID).
		Count(&total).Error
	return total, err
}

// LectureIDs returns the ids of every lecture in a course.
func LectureIDs(db *gorm.DB, courseID uuid.UUID) ([]string, error) {
	var ids []string
	err := db.Table("lectures").
		Joins("JOIN chapters ON chapters.id = lectures.chapter_id").
		Where("chapters.course_id = ?", courseID).
		Pluck("lectures.id", &ids).Error
	return ids, err
}
