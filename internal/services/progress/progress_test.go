package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/workabroad/application-portal/internal/models"
)

func fullApplication() *models.Application {
	dob := time.Date(1990, 5, 1, 0, 0, 0, 0, time.UTC)
	return &models.Application{
		ID:             1,
		UserUID:        "uid-1",
		PassportStatus: models.PassportHas,
		PhoneNumber:    "+123456789",
		DateOfBirth:    &dob,
		EducationLevel: "bachelor",
		Occupation:     "engineer",
		MaritalStatus:  "single",
		CVFilename:     "cv.pdf",
		IDFilename:     "id.pdf",
		CertFilename:   "cert.pdf",
	}
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(app *models.Application) *models.Application
		want   State
	}{
		{
			name:   "no record",
			modify: func(_ *models.Application) *models.Application { return nil },
			want:   StateNoRecord,
		},
		{
			name: "empty passport status",
			modify: func(app *models.Application) *models.Application {
				app.PassportStatus = ""
				return app
			},
			want: StateNeedsStep1,
		},
		{
			name: "partial personal details",
			modify: func(app *models.Application) *models.Application {
				app.Occupation = ""
				return app
			},
			want: StateNeedsStep2,
		},
		{
			name: "missing one document",
			modify: func(app *models.Application) *models.Application {
				app.CertFilename = ""
				return app
			},
			want: StateNeedsStep3,
		},
		{
			name: "all filled but not submitted",
			modify: func(app *models.Application) *models.Application {
				return app
			},
			want: StateNeedsStep4,
		},
		{
			name: "submitted",
			modify: func(app *models.Application) *models.Application {
				app.Submitted = true
				return app
			},
			want: StateComplete,
		},
		{
			name: "personal details before documents",
			modify: func(app *models.Application) *models.Application {
				app.PhoneNumber = ""
				app.CVFilename = ""
				return app
			},
			want: StateNeedsStep2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.modify(fullApplication())))
		})
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		name   string
		modify func(app *models.Application) *models.Application
		want   int
	}{
		{
			name:   "no record",
			modify: func(_ *models.Application) *models.Application { return nil },
			want:   0,
		},
		{
			name: "only passport status",
			modify: func(app *models.Application) *models.Application {
				return &models.Application{PassportStatus: app.PassportStatus}
			},
			want: 12,
		},
		{
			name: "passport and full personal details",
			modify: func(app *models.Application) *models.Application {
				app.CVFilename = ""
				app.IDFilename = ""
				app.CertFilename = ""
				return app
			},
			want: 75,
		},
		{
			name: "documents count only as a whole group",
			modify: func(app *models.Application) *models.Application {
				app.CertFilename = ""
				return app
			},
			want: 75,
		},
		{
			name: "everything filled",
			modify: func(app *models.Application) *models.Application {
				return app
			},
			want: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Percent(tt.modify(fullApplication())))
		})
	}
}

func TestMissingSteps(t *testing.T) {
	t.Run("nil application misses everything", func(t *testing.T) {
		missing := MissingSteps(nil)
		assert.Equal(t, []string{
			"Step 1: Passport info",
			"Step 2: Personal Details",
			"Step 3: Documents",
			"Step 4: Final Submission",
		}, missing)
	})

	t.Run("complete but not submitted misses only submission", func(t *testing.T) {
		missing := MissingSteps(fullApplication())
		assert.Equal(t, []string{"Step 4: Final Submission"}, missing)
	})

	t.Run("submitted application misses nothing", func(t *testing.T) {
		app := fullApplication()
		app.Submitted = true
		assert.Empty(t, MissingSteps(app))
	})
}

func TestNextRoute(t *testing.T) {
	assert.Equal(t, "/application/step1", NextRoute(StateNoRecord))
	assert.Equal(t, "/application/step1", NextRoute(StateNeedsStep1))
	assert.Equal(t, "/application/step2", NextRoute(StateNeedsStep2))
	assert.Equal(t, "/application/step3", NextRoute(StateNeedsStep3))
	assert.Equal(t, "/application/step4", NextRoute(StateNeedsStep4))
	assert.Equal(t, "/application/summary", NextRoute(StateComplete))
}
