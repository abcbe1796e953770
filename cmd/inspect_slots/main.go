// inspect_slots 查看和维护存档槽
//
// 用法：
//
//	go run ./cmd/inspect_slots [-config data/engine.yaml] [-backend sqlite -path data/saves.db] list
//	go run ./cmd/inspect_slots dump 2
//	go run ./cmd/inspect_slots delete 3
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/decker502/worldstate/pkg/config"
	"github.com/decker502/worldstate/pkg/save"
)

func main() {
	configPath := flag.String("config", "data/engine.yaml", "引擎配置文件路径")
	backend := flag.String("backend", "", "覆盖存储后端 (gdata|sqlite|bbolt)")
	path := flag.String("path", "", "覆盖 sqlite/bbolt 数据库路径")
	verbose := flag.Bool("verbose", false, "输出详细日志")
	flag.Parse()

	if !*verbose {
		log.SetOutput(io.Discard)
	}

	cfg, err := loadConfig(*configPath, *backend, *path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "配置无效: %v\n", err)
		os.Exit(1)
	}

	if err := run(context.Background(), cfg, flag.Args(), os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig(path, backend, storagePath string) (*config.EngineConfig, error) {
	cfg, err := config.LoadEngineConfig(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		cfg = config.DefaultEngineConfig()
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if backend != "" {
		cfg.Backend = backend
		if storagePath == "" {
			cfg.StoragePath = ""
		}
	}
	if storagePath != "" {
		cfg.StoragePath = storagePath
	}
	// 重新填充默认路径并校验
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.EngineConfig, args []string, out io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("用法: inspect_slots [flags] list | dump <slot> | delete <slot>")
	}

	backend, err := save.OpenBackend(cfg)
	if err != nil {
		return fmt.Errorf("open %s backend: %w", cfg.Backend, err)
	}
	store := save.NewSlotStore(backend, cfg.SlotCount)
	defer store.Close()

	switch args[0] {
	case "list":
		return list(ctx, store, out)
	case "dump", "delete":
		if len(args) < 2 {
			return fmt.Errorf("%s 需要槽位编号", args[0])
		}
		slot, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("无效的槽位编号 %q", args[1])
		}
		if args[0] == "dump" {
			return dump(ctx, store, slot, out)
		}
		if err := store.Delete(ctx, slot); err != nil {
			return err
		}
		fmt.Fprintf(out, "槽 %d 已删除\n", slot)
		return nil
	default:
		return fmt.Errorf("未知命令 %q", args[0])
	}
}

func list(ctx context.Context, store *save.SlotStore, out io.Writer) error {
	summaries := store.Summaries(ctx)
	if len(summaries) == 0 {
		fmt.Fprintln(out, "没有存档")
		return nil
	}
	for _, s := range summaries {
		fmt.Fprintf(out, "槽 %d: 场景=%s 时长=%.0fs 保存于=%s 预览=%v\n",
			s.Slot, s.Scene, s.PlaySeconds, s.LastSaved.Format("2006-01-02 15:04:05"), s.HasPreview)
	}
	return nil
}

func dump(ctx context.Context, store *save.SlotStore, slot int, out io.Writer) error {
	if err := store.ValidateSlot(slot); err != nil {
		return err
	}
	record, ok := store.Load(ctx, slot)
	if !ok {
		return fmt.Errorf("槽 %d 没有存档", slot)
	}
	// 预览图只显示是否存在
	record.PreviewImageBase64 = ""
	data, err := save.EncodeRecord(record)
	if err != nil {
		return err
	}
	_, err = out.Write(data)
	return err
}
