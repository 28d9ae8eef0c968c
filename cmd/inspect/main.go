// Command inspect opens a workstream data directory offline and prints a
// summary of the persisted snapshot. Useful when debugging a workspace
// without starting the daemon.
package main

import (
	"flag"
	"fmt"
	"os"

	"workstream/pkg/security"
	"workstream/pkg/store"
)

func main() {
	var (
		dbPath      = flag.String("db", "", "data directory path")
		keyHex      = flag.String("key", os.Getenv("WORKSTREAM_SEAL_KEY"), "hex snapshot sealing key, if the workspace is sealed")
		checkpoints = flag.Bool("checkpoints", false, "also list stored checkpoints")
	)
	flag.Parse()
	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "--db required")
		os.Exit(2)
	}

	var sealer *security.Sealer
	if *keyHex != "" {
		var err error
		sealer, err = security.NewSealer(*keyHex)
		if err != nil {
			fmt.Fprintf(os.Stderr, "bad sealing key: %v\n", err)
			os.Exit(1)
		}
	}

	st, err := store.Open(*dbPath, sealer)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open %s: %v\n", *dbPath, err)
		os.Exit(1)
	}
	defer st.Close()

	snap, found, err := st.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load snapshot: %v\n", err)
		os.Exit(1)
	}
	if !found {
		fmt.Println("no snapshot stored")
		return
	}

	messages := 0
	for _, ch := range snap.Channels {
		messages += len(ch.Messages)
	}
	for _, dm := range snap.DMs {
		messages += len(dm.Messages)
	}

	fmt.Printf("users:           %d\n", len(snap.Users))
	fmt.Printf("channels:        %d\n", len(snap.Channels))
	fmt.Printf("dms:             %d\n", len(snap.DMs))
	fmt.Printf("messages stored: %d\n", messages)
	fmt.Printf("message counter: %d\n", snap.MessageCounter)
	fmt.Printf("session counter: %d\n", snap.SessionCounter)

	if *checkpoints {
		keys, err := st.ListCheckpoints()
		if err != nil {
			fmt.Fprintf(os.Stderr, "list checkpoints: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("checkpoints:     %d\n", len(keys))
		for _, k := range keys {
			fmt.Printf("  %s\n", k)
		}
	}
}
