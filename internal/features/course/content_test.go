package course

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildCourse() Course {
	return Course{
		Title: "Intro to Go",
		Chapters: []Chapter{
			{
				Title: "Setup",
				Order: 2,
				Lectures: []Lecture{
					{Title: "Install", Order: 2, VideoURL: "https://youtu.be/install"},
					{Title: "Welcome", Order: 1, VideoURL: "https://youtu.be/welcome", IsPreviewFree: true},
				},
			},
			{
				Title: "Basics",
				Order: 1,
				Lectures: []Lecture{
					{Title: "Types", Order: 1, VideoURL: "https://youtu.be/types"},
				},
			},
		},
	}
}

func TestSortContent(t *testing.T) {
	course := buildCourse()
	SortContent(&course)

	require.Equal(t, "Basics", course.Chapters[0].Title)
	require.Equal(t, "Setup", course.Chapters[1].Title)
	require.Equal(t, "Welcome", course.Chapters[1].Lectures[0].Title)
	require.Equal(t, "Install", course.Chapters[1].Lectures[1].Title)
}

func TestSanitizeForViewerBlanksPaidLectures(t *testing.T) {
	course := buildCourse()
	SanitizeForViewer(&course, false)

	for _, chapter := range course.Chapters {
		for _, lecture := range chapter.Lectures {
			if lecture.IsPreviewFree {
				require.NotEmpty(t, lecture.VideoURL, "free preview %s should keep its url", lecture.Title)
			} else {
				require.Empty(t, lecture.VideoURL, "paid lecture %s should be blanked", lecture.Title)
			}
		}
	}
}

func TestNextOrderValues(t *testing.T) {
	require.Equal(t, 1, nextChapterOrder(nil))
	require.Equal(t, 3, nextChapterOrder([]Chapter{{Order: 2}, {Order: 1}}))
	require.Equal(t, 1, nextLectureOrder(nil))
	require.Equal(t, 6, nextLectureOrder([]Lecture{{Order: 5}, {Order: 3}}))
}

func TestSanitizeForViewerKeepsURLsForEnrolled(t *testing.T) {
	course := buildCourse()
	SanitizeForViewer(&course, true)

	for _, chapter := range course.Chapters {
		for _, lecture := range chapter.Lectures {
			require.NotEmpty(t, lecture.VideoURL)
		}
	}
}
