package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/catcare/pkg/core"
)

func TestNewPet(t *testing.T) {
	petType, petDescription = "Cat", "  likes boxes "
	t.Cleanup(func() { petType, petDescription = "", "" })

	pet, err := newPet("  Milo ")
	require.NoError(t, err)
	assert.Equal(t, "Milo", pet.Name)
	assert.Equal(t, "Cat", pet.Type)
	assert.Equal(t, "likes boxes", pet.Description)
	assert.True(t, strings.HasPrefix(pet.RecordID(), "pet_"))

	_, err = newPet("   ")
	assert.ErrorContains(t, err, "compulsory")
}

func TestNewTask(t *testing.T) {
	now := time.Date(2024, 5, 17, 8, 30, 0, 0, time.UTC)
	pets := []core.ID{core.StringID("pet_1")}

	t.Run("Valid", func(t *testing.T) {
		taskDescription, taskPriority = "Wet food", "high"
		t.Cleanup(func() { taskDescription, taskPriority = "", "" })

		task, err := newTask("Feed", pets, now)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(task.RecordID(), "task_"))
		assert.Equal(t, "Feed", task.Title)
		assert.Equal(t, "high", task.Priority)
		assert.Equal(t, "off", task.Reminder)
		assert.Equal(t, "2024-05-17T08:30:00.000Z", task.CreatedAt)
		assert.Equal(t, pets, task.PetIDs)
	})

	t.Run("Reports Every Missing Field", func(t *testing.T) {
		taskDescription, taskPriority = "", "urgent"
		t.Cleanup(func() { taskPriority = "" })

		_, err := newTask(" ", nil, now)
		require.Error(t, err)
		for _, msg := range []string{"title is required", "description is required", "at least one pet", "unknown priority"} {
			assert.ErrorContains(t, err, msg)
		}
	})
}
