package scenestate

import "log"

// 刷新流水线的阶段名
const (
	StageRestoreDefaults = "restore-defaults"
	StageApplyLoaded     = "apply-loaded"
	StageDeferredRescan  = "deferred-rescan"
)

// Stage 流水线中的一个命名阶段
type Stage struct {
	Name string
	Run  func()
}

// Pipeline 按顺序执行的命名阶段
// 把“先恢复默认值、再应用存档、最后延迟重扫描”的隐式调用顺序显式化，
// 测试可以单独执行某个阶段
type Pipeline struct {
	stages []Stage
}

// NewPipeline 创建流水线
func NewPipeline(stages ...Stage) *Pipeline {
	return &Pipeline{stages: stages}
}

// Stages 返回阶段名（执行顺序）
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, st := range p.stages {
		names[i] = st.Name
	}
	return names
}

// Run 依次执行全部阶段
func (p *Pipeline) Run() {
	for _, st := range p.stages {
		st.Run()
	}
}

// RunStage 只执行指定阶段
//
// 返回：
//   - bool: false 表示没有该阶段
func (p *Pipeline) RunStage(name string) bool {
	for _, st := range p.stages {
		if st.Name == name {
			st.Run()
			return true
		}
	}
	log.Printf("[Pipeline] Unknown stage %q", name)
	return false
}
