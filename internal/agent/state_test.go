package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/appforge-io/appforge-backend/internal/projects/domain"
)

func TestRunState_Seed(t *testing.T) {
	t.Run("loads the snapshot once", func(t *testing.T) {
		s := NewRunState()
		s.Seed(domain.FileSet{"a.txt": "1"})
		s.Seed(domain.FileSet{"b.txt": "2"})

		assert.Equal(t, domain.FileSet{"a.txt": "1"}, s.Files())
	})

	t.Run("empty snapshot does not consume the seed", func(t *testing.T) {
		s := NewRunState()
		s.Seed(nil)
		s.Seed(domain.FileSet{"a.txt": "1"})

		assert.Equal(t, 1, s.FileCount())
	})
}

func TestRunState_MergeFiles(t *testing.T) {
	s := NewRunState()
	s.Seed(domain.FileSet{"a.txt": "old", "keep.txt": "kept"})

	s.MergeFiles(map[string]string{"a.txt": "new", "b.txt": "added"})

	files := s.Files()
	assert.Equal(t, "new", files["a.txt"], "last write wins")
	assert.Equal(t, "kept", files["keep.txt"], "untouched files survive")
	assert.Equal(t, "added", files["b.txt"])
	assert.Equal(t, 3, s.FileCount())
}

func TestRunState_FilesReturnsCopy(t *testing.T) {
	s := NewRunState()
	s.MergeFiles(map[string]string{"a.txt": "1"})

	snapshot := s.Files()
	snapshot["a.txt"] = "mutated"
	snapshot["extra.txt"] = "x"

	assert.Equal(t, domain.FileSet{"a.txt": "1"}, s.Files())
}

func TestRunState_Summary(t *testing.T) {
	s := NewRunState()
	assert.Empty(t, s.Summary())
	s.SetSummary("done")
	assert.Equal(t, "done", s.Summary())
}
