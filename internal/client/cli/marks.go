package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	"lifeweeks/internal/client/store"
	"lifeweeks/internal/dates"
	"lifeweeks/internal/snapshot"
)

// ListMarks prints every mark with its id, date, kind and title.
func (a *App) ListMarks(ctx context.Context) error {
	marks, err := a.store.ListMarks(ctx)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	if len(marks) == 0 {
		fmt.Println("No marks yet. Use 'add' to create one.")
		return nil
	}

	for _, m := range marks {
		line := fmt.Sprintf("%s  %s  w%-5d %-9s %s", m.ID, m.Date, m.WeekIndex, m.Kind, m.Title)
		if m.Tag != "" {
			line += "  #" + m.Tag
		}
		fmt.Println(line)
	}
	return nil
}

func promptKind(a *App) (string, error) {
	kind, err := getSimpleText(a.reader, "- Enter kind (milestone/plan/note, default note)", os.Stdout)
	if err != nil {
		return "", err
	}
	if kind == "" {
		kind = snapshot.KindNote
	}
	return kind, nil
}

func promptMarkDate(a *App) (string, error) {
	return getSimpleText(a.reader, "- Enter date (YYYY-MM-DD)", os.Stdout)
}

// AddMark interactively collects mark fields and stores a new mark. The week
// index is derived from the birth date, so 'setdob' must have run first.
func (a *App) AddMark(ctx context.Context) error {
	title, err := getSimpleText(a.reader, "- Enter title", os.Stdout)
	if err != nil {
		return err
	}

	kind, err := promptKind(a)
	if err != nil {
		return err
	}

	dateStr, err := promptMarkDate(a)
	if err != nil {
		return err
	}
	date, err := dates.ParseISO(dateStr)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	tag, err := getSimpleText(a.reader, "- Enter tag (optional)", os.Stdout)
	if err != nil {
		return err
	}

	notes, err := GetMultiline(a.reader, "- Enter notes (optional):", os.Stdout)
	if err != nil {
		return err
	}

	id, err := a.store.AddMark(ctx, store.MarkFields{
		Title: title,
		Kind:  kind,
		Date:  date,
		Tag:   tag,
		Notes: notes,
	})
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	fmt.Println("Added", id)
	return nil
}

// EditMark re-prompts every field of an existing mark. An empty answer keeps
// the current value.
func (a *App) EditMark(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter mark id to edit", os.Stdout)
	if err != nil {
		return err
	}

	current, err := a.findMark(ctx, id)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	title, err := getSimpleText(a.reader, fmt.Sprintf("- Title [%s]", current.Title), os.Stdout)
	if err != nil {
		return err
	}
	if title == "" {
		title = current.Title
	}

	kind, err := getSimpleText(a.reader, fmt.Sprintf("- Kind [%s]", current.Kind), os.Stdout)
	if err != nil {
		return err
	}
	if kind == "" {
		kind = current.Kind
	}

	dateStr, err := getSimpleText(a.reader, fmt.Sprintf("- Date [%s]", current.Date), os.Stdout)
	if err != nil {
		return err
	}
	if dateStr == "" {
		dateStr = current.Date
	}
	date, err := dates.ParseISO(dateStr)
	if err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	tag, err := getSimpleText(a.reader, fmt.Sprintf("- Tag [%s]", current.Tag), os.Stdout)
	if err != nil {
		return err
	}
	if tag == "" {
		tag = current.Tag
	}

	notes, err := GetMultiline(a.reader, "- Notes (empty keeps current):", os.Stdout)
	if err != nil {
		return err
	}
	if notes == "" {
		notes = current.Notes
	}

	if err := a.store.UpdateMark(ctx, current.ID, store.MarkFields{
		Title: title,
		Kind:  kind,
		Date:  date,
		Tag:   tag,
		Notes: notes,
	}); err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	fmt.Println("Updated", current.ID)
	return nil
}

// DeleteMark removes a mark by id. Deleting an unknown id is not an error.
func (a *App) DeleteMark(ctx context.Context) error {
	id, err := getSimpleText(a.reader, "Enter mark id to delete", os.Stdout)
	if err != nil {
		return err
	}

	if err := a.store.RemoveMark(ctx, id); err != nil {
		log.Printf("Error: %s", err.Error())
		return err
	}

	fmt.Println("Deleted", id)
	return nil
}

// findMark resolves an id, accepting a unique prefix as a convenience.
func (a *App) findMark(ctx context.Context, id string) (*snapshot.Mark, error) {
	marks, err := a.store.ListMarks(ctx)
	if err != nil {
		return nil, err
	}

	var match *snapshot.Mark
	for i := range marks {
		if marks[i].ID == id {
			return &marks[i], nil
		}
		if len(id) >= 4 && len(marks[i].ID) >= len(id) && marks[i].ID[:len(id)] == id {
			if match != nil {
				return nil, fmt.Errorf("id prefix %q is ambiguous", id)
			}
			match = &marks[i]
		}
	}
	if match == nil {
		return nil, fmt.Errorf("no mark with id %q", id)
	}
	return match, nil
}
