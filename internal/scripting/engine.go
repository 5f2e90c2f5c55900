// Package scripting hosts the designer-tunable balance formulas in Lua:
// the experience curve, the monster-kill XP scaling by level difference,
// and the per-class level-up growth roll.
package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// MaxLevel is the level cap. The Lua curve stops growing here.
const MaxLevel = 99

// Engine wraps a single gopher-lua VM. Callers must serialize access —
// in practice every call happens under the world lock.
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine and loads all scripts from the given
// directory.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}
	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// ExpForLevel returns the cumulative experience required to reach level.
func (e *Engine) ExpForLevel(level int) int64 {
	return int64(e.callIntFunc("expForLevel", level))
}

// LevelFromExp returns the level a cumulative experience total maps to.
func (e *Engine) LevelFromExp(exp int64) int {
	return e.callIntFunc("levelFromExp", int(exp))
}

// ScaleMonsterExp applies the level-difference scaling to a monster's base
// experience reward. 等級差距懲罰/加成表在 scripts/experience.lua。
func (e *Engine) ScaleMonsterExp(playerLevel, monsterLevel, baseReward int) int {
	return e.callIntFunc("scaleMonsterExp", playerLevel, monsterLevel, baseReward)
}

// callIntFunc calls a global Lua function with integer args and returns its
// integer result. Missing functions and runtime errors log and return 0.
func (e *Engine) callIntFunc(name string, args ...int) int {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		e.log.Error("lua 函式不存在", zap.String("func", name))
		return 0
	}
	lvArgs := make([]lua.LValue, len(args))
	for i, a := range args {
		lvArgs[i] = lua.LNumber(a)
	}
	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lvArgs...); err != nil {
		e.log.Error("lua 呼叫失敗", zap.String("func", name), zap.Error(err))
		return 0
	}
	ret := e.vm.Get(-1)
	e.vm.Pop(1)
	if n, ok := ret.(lua.LNumber); ok {
		return int(n)
	}
	return 0
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
