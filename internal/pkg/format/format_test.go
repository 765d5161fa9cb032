package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestHumanSize(t *testing.T) {
	assert.Equal(t, "512 B", HumanSize(512))
	assert.Equal(t, "1.0 KB", HumanSize(1024))
	assert.Equal(t, "1.5 MB", HumanSize(1572864))
	assert.Equal(t, "2.0 GB", HumanSize(2<<30))
}

func TestHumanDuration(t *testing.T) {
	assert.Equal(t, "expired", HumanDuration(0))
	assert.Equal(t, "45m", HumanDuration(45*time.Minute))
	assert.Equal(t, "6h 30m", HumanDuration(6*time.Hour+30*time.Minute))
	assert.Equal(t, "2d 5h", HumanDuration(53*time.Hour))
}
