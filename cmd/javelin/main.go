package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"javelin/pkg/clock"
	"javelin/pkg/config"
	"javelin/pkg/listener"
	"javelin/pkg/memtable"
	"javelin/pkg/types"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML config")
	numKeys := flag.Int("keys", 1000, "number of keys written per generation")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := initConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	initLogger(&cfg)

	if err := run(ctx, cfg.DB.Memtable, *numKeys); err != nil {
		slog.Error("javelin demo failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.MemtableConfig, numKeys int) error {
	mt, err := memtable.New(cfg)
	if err != nil {
		return fmt.Errorf("failed to create memtable: %w", err)
	}

	// stands in for the flush subsystem: "persist" and evict every frozen buffer
	var flusher *listener.Listener[*memtable.Frozen]
	if ch := mt.FlushChan(); ch != nil {
		flusher = listener.New(ch, func(f *memtable.Frozen) error {
			records := f.Sorted()
			slog.Info("flushing frozen buffer", "id", f.ID(), "records", len(records), "max_seq", f.MaxSeqNum())
			if !mt.Evict(f.ID()) {
				return fmt.Errorf("frozen buffer %s already evicted", f.ID())
			}
			return nil
		})
		flusher.Start(ctx)
	}

	seqN := clock.NewAtomic(0)
	key := []byte{1}

	if err := mt.Insert(memtable.NewRecord(memtable.Put(key, []byte{1}), seqN.Next())); err != nil {
		return err
	}
	printLookup(mt, key, 1)
	printLookup(mt, key, 0)

	for gen := 0; gen < 2; gen++ {
		for i := 0; i < numKeys; i++ {
			k := fmt.Appendf(nil, "key-%06d", i)
			v := fmt.Appendf(nil, "gen-%d", gen)
			if err := mt.Insert(memtable.NewRecord(memtable.Put(k, v), seqN.Next())); err != nil {
				return err
			}
		}

		frozen, err := mt.Freeze()
		if err != nil {
			return err
		}
		slog.Info("froze active buffer", "id", frozen.ID(), "records", frozen.Len(), "size", frozen.ApproximateSize())
	}

	if err := mt.Insert(memtable.NewRecord(memtable.Delete(key), seqN.Next())); err != nil {
		return err
	}
	printLookup(mt, key, 1)
	printLookup(mt, key, seqN.Val())
	printLookup(mt, []byte("key-000000"), types.MaxSequenceNumber)

	mt.Close()
	if flusher != nil {
		flusher.Wait()
	}

	return nil
}

func printLookup(mt *memtable.Memtable, key types.Key, maxSeqN types.SequenceNumber) {
	rec, ok, err := mt.Get(key, maxSeqN)
	switch {
	case err != nil:
		fmt.Printf("get(%q, %d): error: %v\n", key, maxSeqN, err)
	case !ok:
		fmt.Printf("get(%q, %d): not found\n", key, maxSeqN)
	default:
		fmt.Printf("get(%q, %d): %s value=%q seq=%d\n", key, maxSeqN, rec.Kind, rec.Value, rec.SeqNum)
	}
}
