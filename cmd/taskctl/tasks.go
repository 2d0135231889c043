package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"taskden/internal/model"
)

func addCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient(cmd)
			if err != nil {
				return err
			}

			t := model.Task{Title: strings.Join(args, " ")}
			if due, _ := cmd.Flags().GetString("due"); due != "" {
				t.DueDate = &due
			}
			if prio, _ := cmd.Flags().GetString("priority"); prio != "" {
				t.Priority = model.Priority(prio)
			}
			if tags, _ := cmd.Flags().GetStringSlice("tag"); len(tags) > 0 {
				t.Tags = tags
			}
			if cat, _ := cmd.Flags().GetString("category"); cat != "" {
				t.Category = cat
			}
			if repeat, _ := cmd.Flags().GetString("repeat"); repeat != "" {
				interval, _ := cmd.Flags().GetInt("every")
				t.Repeat = &model.Repeat{Type: model.RepeatType(repeat), Interval: interval}
			}

			created, err := c.AddTask(t)
			if err != nil {
				return err
			}
			fmt.Printf("added %s: %s\n", created.ID, created.Title)
			return nil
		},
	}
	cmd.Flags().StringP("due", "d", "", "due date (YYYY-MM-DD)")
	cmd.Flags().StringP("priority", "p", "", "priority (low, medium, high)")
	cmd.Flags().StringSliceP("tag", "t", nil, "tags")
	cmd.Flags().String("category", "", "category")
	cmd.Flags().String("repeat", "", "repeat type (daily, weekly, monthly)")
	cmd.Flags().Int("every", 1, "repeat interval")
	return cmd
}

func lsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient(cmd)
			if err != nil {
				return err
			}
			tasks, err := c.FetchTasks()
			if err != nil {
				return err
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(tasks)
			}

			showAll, _ := cmd.Flags().GetBool("all")
			printed := 0
			for _, t := range tasks {
				if t.Completed && !showAll {
					continue
				}
				mark := " "
				if t.Completed {
					mark = "x"
				}
				line := fmt.Sprintf("[%s] %s  %s", mark, t.ID, t.Title)
				if t.DueDate != nil {
					line += "  due " + *t.DueDate
				}
				if t.Repeat != nil && t.Repeat.Active() {
					line += fmt.Sprintf("  (every %d %s)", t.Repeat.EffectiveInterval(), t.Repeat.Type)
				}
				if len(t.Tags) > 0 {
					line += "  #" + strings.Join(t.Tags, " #")
				}
				fmt.Println(line)
				printed++
			}
			if printed == 0 {
				fmt.Println("no open tasks")
			}
			return nil
		},
	}
	cmd.Flags().BoolP("all", "a", false, "include completed tasks")
	cmd.Flags().Bool("json", false, "output as JSON")
	return cmd
}

func doneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "done [task-id]",
		Short: "Toggle a task's completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient(cmd)
			if err != nil {
				return err
			}
			t, err := c.ToggleTaskStatus(model.TaskID(args[0]))
			if err != nil {
				return err
			}
			state := "reopened"
			if t.Completed {
				state = "done"
			}
			fmt.Printf("%s: %s\n", state, t.Title)
			return nil
		},
	}
}

func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm [task-id]",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient(cmd)
			if err != nil {
				return err
			}
			if err := c.DeleteTask(model.TaskID(args[0])); err != nil {
				return err
			}
			fmt.Println("deleted", args[0])
			return nil
		},
	}
}

func projectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Manage projects",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient(cmd)
			if err != nil {
				return err
			}
			projects, err := c.Projects()
			if err != nil {
				return err
			}
			if len(projects) == 0 {
				fmt.Println("no projects")
				return nil
			}
			for _, p := range projects {
				fmt.Printf("%s  %s  %s\n", p.ID, p.Name, p.Color)
			}
			return nil
		},
	})

	addProject := &cobra.Command{
		Use:   "add [name]",
		Short: "Create a project",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient(cmd)
			if err != nil {
				return err
			}
			color, _ := cmd.Flags().GetString("color")
			p, err := c.AddProject(model.Project{Name: strings.Join(args, " "), Color: color})
			if err != nil {
				return err
			}
			fmt.Printf("created %s: %s\n", p.ID, p.Name)
			return nil
		},
	}
	addProject.Flags().String("color", "", "hex color, e.g. #4a90d9")
	cmd.AddCommand(addProject)

	cmd.AddCommand(&cobra.Command{
		Use:   "rm [project-id]",
		Short: "Delete a project (its tasks are kept)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient(cmd)
			if err != nil {
				return err
			}
			if err := c.DeleteProject(model.ProjectID(args[0])); err != nil {
				return err
			}
			fmt.Println("deleted", args[0])
			return nil
		},
	})

	return cmd
}

func captureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "capture [text]",
		Short: "Turn free text into tasks (reads stdin when no argument)",
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := authedClient(cmd)
			if err != nil {
				return err
			}

			text := strings.Join(args, " ")
			if text == "" {
				b, err := io.ReadAll(os.Stdin)
				if err != nil {
					return err
				}
				text = string(b)
			}
			if strings.TrimSpace(text) == "" {
				return fmt.Errorf("nothing to capture")
			}

			res, err := c.Capture(text)
			if err != nil {
				return err
			}
			for _, t := range res.Tasks {
				fmt.Printf("added %s: %s\n", t.ID, t.Title)
			}
			if res.Fallback {
				fmt.Fprintln(os.Stderr, "note: extraction fell back to the raw text")
			}
			return nil
		},
	}
}
