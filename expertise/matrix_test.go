package expertise

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatrix_SetRowCopiesInput(t *testing.T) {
	t.Parallel()
	m := NewMatrix()
	scores := map[string]float64{DomainModeling: 0.7}
	m.SetRow("a1", scores)

	scores[DomainModeling] = 0.1
	assert.InDelta(t, 0.7, m.Score("a1", DomainModeling), 1e-9)
}

func TestMatrix_RowReturnsCopy(t *testing.T) {
	t.Parallel()
	m := NewMatrix()
	m.SetRow("a1", map[string]float64{DomainModeling: 0.7})

	row := m.Row("a1")
	row[DomainModeling] = 0.1
	assert.InDelta(t, 0.7, m.Score("a1", DomainModeling), 1e-9)
}

func TestMatrix_UnknownDefaults(t *testing.T) {
	t.Parallel()
	m := NewMatrix()
	assert.Zero(t, m.Score("ghost", DomainModeling))
	assert.Empty(t, m.Row("ghost"))
}
