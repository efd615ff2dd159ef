// Copyright (c) 2024 Tomás Farías and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package health

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBinary(t *testing.T) {
	t.Run("will be unhealthy", func(t *testing.T) {
		t.Run("if it is the zero value", func(t *testing.T) {
			var m Binary
			assert.False(t, m.Healthy(context.Background()))
		})

		t.Run("if set back to unhealthy", func(t *testing.T) {
			var m Binary
			m.Set(true)
			m.Set(false)
			assert.False(t, m.Healthy(context.Background()))
		})
	})

	t.Run("will be healthy", func(t *testing.T) {
		t.Run("if set healthy", func(t *testing.T) {
			var m Binary
			m.Set(true)
			assert.True(t, m.Healthy(context.Background()))
		})
	})
}

func TestAnd(t *testing.T) {
	t.Run("will be healthy", func(t *testing.T) {
		t.Run("if all metrics are healthy", func(t *testing.T) {
			var a, b Binary
			a.Set(true)
			b.Set(true)

			assert.True(t, And(&a, &b).Healthy(context.Background()))
		})
	})

	t.Run("will be unhealthy", func(t *testing.T) {
		t.Run("if any metric is unhealthy", func(t *testing.T) {
			var a, b Binary
			a.Set(true)

			assert.False(t, And(&a, &b).Healthy(context.Background()))
		})
	})
}

func TestOr(t *testing.T) {
	t.Run("will be healthy", func(t *testing.T) {
		t.Run("if any metric is healthy", func(t *testing.T) {
			var a, b Binary
			b.Set(true)

			assert.True(t, Or(&a, &b).Healthy(context.Background()))
		})
	})

	t.Run("will be unhealthy", func(t *testing.T) {
		t.Run("if all metrics are unhealthy", func(t *testing.T) {
			var a, b Binary

			assert.False(t, Or(&a, &b).Healthy(context.Background()))
		})
	})
}

func TestNot(t *testing.T) {
	t.Run("will negate the underlying metric", func(t *testing.T) {
		var m Binary
		assert.True(t, Not(&m).Healthy(context.Background()))

		m.Set(true)
		assert.False(t, Not(&m).Healthy(context.Background()))
	})
}
