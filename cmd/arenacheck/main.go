package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/park285/checkers-arena/internal/arenaclient"
	"github.com/park285/checkers-arena/pkg/arenadto"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:  "arenacheck",
		Usage: "smoke-check a running checkers server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "base-url",
				Value:   "http://localhost:8080",
				Usage:   "server root",
				Sources: cli.EnvVars("ARENA_BASE_URL"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "rooms",
				Usage:  "list rooms waiting for a player",
				Action: listRooms,
			},
			{
				Name:  "create",
				Usage: "reserve a room",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "name", Usage: "room name"},
					&cli.StringFlag{Name: "nickname", Usage: "creator nickname", Required: true},
				},
				Action: createRoom,
			},
			{
				Name:  "watch",
				Usage: "print a room's frames for a while",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "room", Usage: "room code", Required: true},
					&cli.IntFlag{Name: "seconds", Value: 10, Usage: "observation window"},
				},
				Action: watchRoom,
			},
		},
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func client(cmd *cli.Command) *arenaclient.Client {
	return arenaclient.NewClient(cmd.String("base-url"), arenaclient.WithTimeout(8*time.Second))
}

func listRooms(ctx context.Context, cmd *cli.Command) error {
	rooms, err := client(cmd).ListRooms(ctx)
	if err != nil {
		return err
	}
	if len(rooms) == 0 {
		fmt.Println("no open rooms")
		return nil
	}
	for _, r := range rooms {
		fmt.Printf("%s\t%-20s\t%d/%d\t%s\n", r.RoomID, r.RoomName, r.CurrentPlayers, r.MaxPlayers, r.Status)
	}
	return nil
}

func createRoom(ctx context.Context, cmd *cli.Command) error {
	resp, err := client(cmd).CreateRoom(ctx, cmd.String("name"), cmd.String("nickname"))
	if err != nil {
		return err
	}
	fmt.Printf("room=%s creator=%s\n%s\n", resp.RoomID, resp.CreatorID, resp.Message)
	return nil
}

func watchRoom(ctx context.Context, cmd *cli.Command) error {
	c := client(cmd)
	roomID := cmd.String("room")
	if ok, err := c.RoomExists(ctx, roomID); err != nil {
		return err
	} else if !ok {
		return fmt.Errorf("room %s not found", roomID)
	}

	obs := arenaclient.NewObserver(arenaclient.WebSocketURL(c.BaseURL()), func(env arenadto.Envelope) {
		fmt.Printf("%s %s\n", env.Action, env.Data)
	})
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := obs.Connect(cctx); err != nil {
		return fmt.Errorf("ws connect: %w", err)
	}
	defer func() { _ = obs.Close(context.Background()) }()
	if err := obs.Watch(cctx, roomID); err != nil {
		return err
	}

	t := time.NewTimer(time.Duration(cmd.Int("seconds")) * time.Second)
	defer t.Stop()
	select {
	case <-t.C:
	case <-ctx.Done():
	}
	return obs.Err()
}
