package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"github.com/decker502/worldstate/pkg/app"
	"github.com/decker502/worldstate/pkg/config"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	configPath := flag.String("config", "data/engine.yaml", "引擎配置文件路径")
	scenesDir := flag.String("scenes", "data/scenes", "场景布局目录")
	slot := flag.Int("slot", 1, "启动时应用的存档槽 (1-4)")
	verbose := flag.Bool("verbose", false, "输出详细日志")
	flag.Parse()

	cfg, err := config.LoadEngineConfig(*configPath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			log.Fatalf("配置加载失败: %v", err)
		}
		cfg = config.DefaultEngineConfig()
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatalf("环境变量配置无效: %v", err)
	}
	if *verbose {
		cfg.Verbose = true
	}

	game, err := app.NewApp(app.Config{
		Engine:    cfg,
		ScenesDir: *scenesDir,
		Slot:      *slot,
	})
	if err != nil {
		log.Fatalf("初始化失败: %v", err)
	}
	defer game.Close()

	ebiten.SetWindowSize(app.ScreenWidth*2, app.ScreenHeight*2)
	ebiten.SetWindowTitle("World State Demo")

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, app.ErrQuit) {
		log.Printf("游戏退出: %v", err)
	}
}
