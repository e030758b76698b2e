package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/aretw0/catcare"
	"github.com/aretw0/catcare/pkg/core"
	"github.com/aretw0/catcare/pkg/typed"
)

// Task priorities accepted by "tasks add".
var taskPriorities = []string{"low", "normal", "high"}

var (
	petType, petBreed, petGender, petAge, petDescription string

	taskDescription, taskPriority, taskType string
	taskPets                                []string
)

var recordsJSON bool

var petsCmd = &cobra.Command{
	Use:   "pets",
	Short: "List stored pets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer closeService(svc)

		pets, err := catcare.Pets(svc.Store()).List(context.Background())
		if err != nil {
			return err
		}
		if recordsJSON {
			return writeJSON(cmd, pets)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tTYPE\tBREED")
		for _, p := range pets {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.ID, p.Name, dash(p.Type), dash(p.Breed))
		}
		return w.Flush()
	},
}

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List stored tasks",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer closeService(svc)

		tasks, err := catcare.Tasks(svc.Store()).List(context.Background())
		if err != nil {
			return err
		}
		if recordsJSON {
			return writeJSON(cmd, tasks)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tTITLE\tPETS\tPRIORITY\tDONE")
		for _, t := range tasks {
			ids := make([]string, len(t.PetIDs))
			for i, id := range t.PetIDs {
				ids[i] = id.String()
			}
			done := ""
			if t.Done {
				done = color.GreenString("yes")
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Title, dash(strings.Join(ids, ",")), dash(t.Priority), done)
		}
		return w.Flush()
	},
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

var petsAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Create a pet profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pet, err := newPet(args[0])
		if err != nil {
			return err
		}
		svc, err := openService()
		if err != nil {
			return err
		}
		defer closeService(svc)

		if err := catcare.Pets(svc.Store()).Upsert(context.Background(), pet); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", color.GreenString("added"), pet.Name, pet.ID)
		return nil
	},
}

// newPet builds a pet from the add flags. The name is required.
func newPet(name string) (core.Pet, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Pet{}, errors.New("pet name is compulsory")
	}
	return core.Pet{
		ID:          core.StringID(typed.NewID("pet")),
		Name:        name,
		Type:        petType,
		Breed:       petBreed,
		Gender:      petGender,
		Age:         petAge,
		Description: strings.TrimSpace(petDescription),
	}, nil
}

var tasksAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Create a care task for one or more pets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := openService()
		if err != nil {
			return err
		}
		defer closeService(svc)

		ctx := context.Background()
		pets := catcare.Pets(svc.Store())
		ids := make([]core.ID, 0, len(taskPets))
		for _, ref := range taskPets {
			pet, err := pets.Get(ctx, ref)
			if err != nil {
				return fmt.Errorf("unknown pet %q: %w", ref, err)
			}
			ids = append(ids, pet.ID)
		}

		task, err := newTask(args[0], ids, time.Now())
		if err != nil {
			return err
		}
		if err := catcare.Tasks(svc.Store()).Upsert(ctx, task); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", color.GreenString("added"), task.Title, task.ID)
		return nil
	},
}

// newTask builds a task from the add flags. Title, description and at least
// one pet are required.
func newTask(title string, pets []core.ID, now time.Time) (core.Task, error) {
	var errs []error
	title = strings.TrimSpace(title)
	description := strings.TrimSpace(taskDescription)
	if title == "" {
		errs = append(errs, errors.New("task title is required"))
	}
	if description == "" {
		errs = append(errs, errors.New("description is required"))
	}
	if len(pets) == 0 {
		errs = append(errs, errors.New("select at least one pet with --pet"))
	}
	priority := taskPriority
	if priority == "" {
		priority = "normal"
	}
	if !slices.Contains(taskPriorities, priority) {
		errs = append(errs, fmt.Errorf("unknown priority %q (want one of %v)", priority, taskPriorities))
	}
	if err := errors.Join(errs...); err != nil {
		return core.Task{}, err
	}
	return core.Task{
		ID:          core.StringID(typed.NewID("task")),
		Title:       title,
		Description: description,
		PetIDs:      pets,
		Type:        taskType,
		Priority:    priority,
		Reminder:    "off",
		CreatedAt:   now.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}, nil
}

func init() {
	for _, c := range []*cobra.Command{petsCmd, tasksCmd} {
		c.Flags().BoolVar(&recordsJSON, "json", false, "Print records as JSON")
		rootCmd.AddCommand(c)
	}

	petsAddCmd.Flags().StringVar(&petType, "type", "", "Pet type (Cat, Dog, ...)")
	petsAddCmd.Flags().StringVar(&petBreed, "breed", "", "Breed")
	petsAddCmd.Flags().StringVar(&petGender, "gender", "", "Gender")
	petsAddCmd.Flags().StringVar(&petAge, "age", "", "Age")
	petsAddCmd.Flags().StringVar(&petDescription, "description", "", "Description")
	petsCmd.AddCommand(petsAddCmd)

	tasksAddCmd.Flags().StringVar(&taskDescription, "description", "", "Task description (required)")
	tasksAddCmd.Flags().StringSliceVar(&taskPets, "pet", nil, "Pet id the task is for (repeatable)")
	tasksAddCmd.Flags().StringVar(&taskPriority, "priority", "normal", "Priority: low, normal or high")
	tasksAddCmd.Flags().StringVar(&taskType, "type", "", "Task type")
	tasksCmd.AddCommand(tasksAddCmd)
}
