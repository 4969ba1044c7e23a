// Command ztree replays a log directory on top of its latest snapshot and
// prints the resulting tree. It is the whole of this repository's
// "server" in the sense of a process that drives the tree from real
// files on disk, without any networking, replication, or client protocol
// attached to it.
package main

import (
	"encoding/binary"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/mikekulinski/ztree/pkg/config"
	"github.com/mikekulinski/ztree/pkg/datatree"
	"github.com/mikekulinski/ztree/pkg/log"
	"github.com/mikekulinski/ztree/pkg/persistence"
	"github.com/mikekulinski/ztree/pkg/txn"
	"github.com/mikekulinski/ztree/pkg/zkerrors"
	"github.com/mikekulinski/ztree/pkg/znode"
	"github.com/mikekulinski/ztree/pkg/zxid"
)

func main() {
	app := &cli.App{
		Name:  "ztree",
		Usage: "replay a ztree data directory and inspect the resulting tree",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a TOML config file",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "dump",
				Usage: "replay the data directory and print every node",
				Action: runDump,
			},
			{
				Name:  "init-config",
				Usage: "write a default config file to the given path",
				Action: runInitConfig,
			},
			{
				Name:      "create",
				Usage:     "replay the data directory, create a persistent node, and append the resulting transaction to the log",
				ArgsUsage: "<path> <data>",
				Action:    runCreate,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	path := c.String("config")
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func runDump(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	logger := log.New("ztree")
	tree := datatree.New(logger)

	proc, err := persistence.Replay(cfg.SnapshotDir, cfg.LogDir, tree)
	if err != nil {
		return fmt.Errorf("error replaying data directory: %w", err)
	}

	fmt.Printf("last processed zxid: %d\n", proc.LastProcessedZxid())
	fmt.Printf("node count: %d\n", tree.NodeCount())
	fmt.Printf("approximate data size: %d bytes\n", tree.ApproximateDataSize())

	tree.Walk(func(path string, node *znode.NodeRecord) {
		fmt.Printf("%-40s version=%-4d cversion=%-4d bytes=%d\n", path, node.Stat.Version, node.Stat.Cversion, len(node.Data))
	})
	return nil
}

func runInitConfig(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("usage: ztree init-config <path>")
	}
	return config.WriteDefault(path)
}

// runCreate is a one-shot, single-node stand-in for what a request
// pipeline would otherwise do: it replays the current state to learn the
// last assigned zxid, advances it by one within the same epoch, applies
// the create, and durably appends the transaction before returning.
func runCreate(c *cli.Context) error {
	path := c.Args().Get(0)
	data := c.Args().Get(1)
	if path == "" {
		return fmt.Errorf("usage: ztree create <path> <data>")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	logger := log.New("ztree")
	tree := datatree.New(logger)

	proc, err := persistence.Replay(cfg.SnapshotDir, cfg.LogDir, tree)
	if err != nil {
		return fmt.Errorf("error replaying data directory: %w", err)
	}

	nextZxid := zxid.FromInt64(proc.LastProcessedZxid()).Next()
	header := txn.Header{ClientID: mintClientID(), Zxid: int64(nextZxid), Type: txn.OpCreate}
	body := txn.Body{Create: &txn.CreateTxn{Path: path, Data: []byte(data), ParentCVersion: -1}}

	rc := proc.ProcessTxn(header, body)
	if rc.Err != 0 {
		return fmt.Errorf("create failed: %s", zkerrors.Code(rc.Err))
	}

	lm, err := persistence.NewLogManager(cfg.LogDir)
	if err != nil {
		return fmt.Errorf("error opening log directory: %w", err)
	}
	if err := lm.Append(header, body); err != nil {
		return fmt.Errorf("error appending to log: %w", err)
	}

	fmt.Printf("created %s at zxid %d (epoch=%d counter=%d)\n", path, int64(nextZxid), nextZxid.GetEpoch(), nextZxid.GetCounter())
	return nil
}

// mintClientID stands in for the session id a real client connection would
// carry. Each one-shot CLI invocation mints its own, the same way the
// teacher's client assigned itself a fresh uuid per connection; only the
// wire shape differs, since a transaction header's ClientID is an int64,
// not a string.
func mintClientID() int64 {
	id := uuid.New()
	return int64(binary.BigEndian.Uint64(id[:8]) & (1<<63 - 1))
}
