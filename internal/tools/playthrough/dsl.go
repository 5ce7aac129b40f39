// Package playthrough runs scripted game sessions from a Lua DSL. It is
// a developer tool for exercising full kill chains end to end without a
// browser client.
package playthrough

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/Shopify/go-lua"
)

const playthroughTypeName = "playthrough"

// Playthrough is a named sequence of scripted steps.
type Playthrough struct {
	Name  string
	Steps []Step
}

// Step is one scripted operation with its raw arguments.
type Step struct {
	Kind string
	Args map[string]any
}

// LoadFromFile evaluates a Lua script and returns the playthrough it
// builds. The script must return the Playthrough userdata.
func LoadFromFile(path string) (*Playthrough, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)

	registerPlaythroughType(state)
	registerPlaythroughConstructor(state)

	if err := lua.LoadFile(state, path, ""); err != nil {
		return nil, fmt.Errorf("load lua: %w", err)
	}
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return nil, fmt.Errorf("run lua: %w", err)
	}

	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return nil, fmt.Errorf("playthrough script must return Playthrough")
	}
	ud := state.ToUserData(-1)
	state.Pop(1)
	run, ok := ud.(*Playthrough)
	if !ok || run == nil {
		return nil, fmt.Errorf("playthrough script returned invalid Playthrough")
	}
	if strings.TrimSpace(run.Name) == "" {
		run.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return run, nil
}

func registerPlaythroughType(state *lua.State) {
	lua.NewMetaTable(state, playthroughTypeName)
	state.NewTable()
	lua.SetFunctions(state, playthroughMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)
}

func registerPlaythroughConstructor(state *lua.State) {
	state.NewTable()
	lua.SetFunctions(state, playthroughConstructor, 0)
	state.SetGlobal("Playthrough")
}

var playthroughConstructor = []lua.RegistryFunction{
	{Name: "new", Function: playthroughNew},
}

func playthroughNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	run := &Playthrough{Name: name}
	state.PushUserData(run)
	lua.SetMetaTableNamed(state, playthroughTypeName)
	return 1
}

var playthroughMethods = []lua.RegistryFunction{
	{Name: "start", Function: playthroughStart},
	{Name: "scenario", Function: playthroughScenario},
	{Name: "action", Function: playthroughAction},
	{Name: "phase", Function: playthroughPhase},
	{Name: "expect", Function: playthroughExpect},
	{Name: "report", Function: playthroughReport},
}

func playthroughStart(state *lua.State) int {
	run := checkPlaythrough(state)
	data := optionalTable(state, 2)
	appendStep(run, "start", data)
	return 0
}

func playthroughScenario(state *lua.State) int {
	run := checkPlaythrough(state)
	appendStep(run, "scenario", nil)
	return 0
}

func playthroughAction(state *lua.State) int {
	run := checkPlaythrough(state)
	lua.CheckType(state, 2, lua.TypeTable)
	data := tableToMap(state, 2)
	appendStep(run, "action", data)
	return 0
}

func playthroughPhase(state *lua.State) int {
	run := checkPlaythrough(state)
	lua.CheckType(state, 2, lua.TypeTable)
	data := tableToMap(state, 2)
	appendStep(run, "phase", data)
	return 0
}

func playthroughExpect(state *lua.State) int {
	run := checkPlaythrough(state)
	lua.CheckType(state, 2, lua.TypeTable)
	data := tableToMap(state, 2)
	appendStep(run, "expect", data)
	return 0
}

func playthroughReport(state *lua.State) int {
	run := checkPlaythrough(state)
	data := optionalTable(state, 2)
	appendStep(run, "report", data)
	return 0
}

func checkPlaythrough(state *lua.State) *Playthrough {
	ud := lua.CheckUserData(state, 1, playthroughTypeName)
	if run, ok := ud.(*Playthrough); ok && run != nil {
		return run
	}
	lua.ArgumentError(state, 1, "playthrough expected")
	return nil
}

func appendStep(run *Playthrough, kind string, data map[string]any) int {
	if run == nil {
		return -1
	}
	if data == nil {
		data = map[string]any{}
	}
	run.Steps = append(run.Steps, Step{Kind: kind, Args: data})
	return len(run.Steps) - 1
}

func optionalTable(state *lua.State, index int) map[string]any {
	if state.IsNoneOrNil(index) || state.TypeOf(index) != lua.TypeTable {
		return map[string]any{}
	}
	return tableToMap(state, index)
}

func tableToMap(state *lua.State, index int) map[string]any {
	output := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return output
	}

	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			output[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return output
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		value, _ := state.ToString(index)
		return value
	case lua.TypeNumber:
		value, _ := state.ToNumber(index)
		return normalizeNumber(value)
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(state, index)
	case lua.TypeUserData:
		return state.ToUserData(index)
	default:
		return nil
	}
}

func tableToGo(state *lua.State, index int) any {
	if state.TypeOf(index) != lua.TypeTable {
		return nil
	}

	index = state.AbsIndex(index)
	isArray := true
	maxIndex := 0
	count := 0
	state.PushNil()
	for state.Next(index) {
		if isArray {
			if state.TypeOf(-2) != lua.TypeNumber {
				isArray = false
			} else if idx, ok := state.ToInteger(-2); ok && idx > 0 {
				count++
				if idx > maxIndex {
					maxIndex = idx
				}
			} else {
				isArray = false
			}
		}
		state.Pop(1)
	}

	if isArray && count > 0 && maxIndex == count {
		result := make([]any, 0, maxIndex)
		for i := 1; i <= maxIndex; i++ {
			state.RawGetInt(index, i)
			result = append(result, luaToGo(state, -1))
			state.Pop(1)
		}
		return result
	}

	return tableToMap(state, index)
}

func normalizeNumber(value float64) any {
	if math.Mod(value, 1) == 0 {
		return int(value)
	}
	return value
}
