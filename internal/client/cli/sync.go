package cli

import (
	"context"
	"fmt"
	"log"
	"os"

	syncengine "lifeweeks/internal/client/sync"
)

// Sync pulls and merges the remote document, then pushes the merged result.
// A push conflict here means someone else wrote between the two halves; the
// user picks whether to retry the whole cycle, overwrite, or stop.
func (a *App) Sync(ctx context.Context) error {
	for {
		if res := a.engine.PullAndMerge(ctx); !res.OK {
			log.Printf("Pull failed: %s", res.Reason)
			return nil
		}

		res := a.engine.PushSnapshot(ctx, false)
		if res.OK {
			fmt.Println("Synced.")
			return nil
		}
		if res.Reason != syncengine.ReasonConflict {
			log.Printf("Push failed: %s", res.Reason)
			return nil
		}

		answer, err := getSimpleText(a.reader,
			"Remote changed during sync. (r)etry / (f)orce push / (c)ancel", os.Stdout)
		if err != nil {
			return err
		}
		switch answer {
		case "r", "retry":
			continue
		case "f", "force":
			if res := a.engine.PushSnapshot(ctx, true); !res.OK {
				log.Printf("Push failed: %s", res.Reason)
				return nil
			}
			fmt.Println("Synced (forced).")
			return nil
		default:
			fmt.Println("Cancelled.")
			return nil
		}
	}
}

// Pull merges the remote document into the local state without pushing.
func (a *App) Pull(ctx context.Context) error {
	res := a.engine.PullAndMerge(ctx)
	if !res.OK {
		log.Printf("Pull failed: %s", res.Reason)
		return nil
	}
	fmt.Println("Pulled and merged.")
	return nil
}

// Push uploads the local snapshot. Without -f the server rejects the write
// when someone else has pushed since our last pull; with -f the local state
// overwrites the remote unconditionally.
func (a *App) Push(ctx context.Context, force bool) error {
	res := a.engine.PushSnapshot(ctx, force)
	if !res.OK {
		if res.Reason == syncengine.ReasonConflict {
			fmt.Println("Remote changed since last pull. Run 'sync', or 'push -f' to overwrite.")
			return nil
		}
		log.Printf("Push failed: %s", res.Reason)
		return nil
	}
	fmt.Println("Pushed.")
	return nil
}

// ResetRemote discards the local state and replaces it with the remote
// document, after a typed confirmation.
func (a *App) ResetRemote(ctx context.Context) error {
	ok, err := GetConfirmation(a.reader, "This replaces ALL local data with the remote copy.", "yes", os.Stdout)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Cancelled.")
		return nil
	}

	res := a.engine.ResetFromRemote(ctx)
	if !res.OK {
		log.Printf("Reset failed: %s", res.Reason)
		return nil
	}
	fmt.Println("Local data replaced from remote.")
	return nil
}
