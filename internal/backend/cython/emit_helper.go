package cython

import (
	"math"
	"strconv"
	"strings"

	"spbg/internal/emit"
	"spbg/internal/marshal"
	"spbg/internal/types"
)

// Helper renders <model>_helper.py: the sample time, dataclasses mirroring
// the input, output and parameter structs, numpy dtypes for input and output,
// and an environment stub around the wrapper.
func (e *Emitter) Helper() ([]byte, error) {
	w := e.writer(banner)
	w.Line("from dataclasses import dataclass")
	w.Line("import numpy as np")
	w.Blank()
	w.Linef("%s_SAMPLE_TIME = %s", e.info.Model, pyFloat(e.info.SamplePeriod))
	w.Blank()

	roots := []string{e.input.Argument, e.output.Return}
	if e.hasParam {
		roots = append(roots, e.param.Type)
	}
	order, err := e.dataclassOrder(roots)
	if err != nil {
		return nil, err
	}
	for _, rec := range order {
		if err := e.dataclass(w, rec); err != nil {
			return nil, err
		}
	}

	for _, root := range roots[:2] {
		rec, err := e.reg.MustLookup(root)
		if err != nil {
			return nil, err
		}
		var dtErr error
		w.Group(rec.Name+"_dtype = [", "]", false, func() {
			dtErr = e.dtypeFields(w, rec)
		})
		if dtErr != nil {
			return nil, dtErr
		}
		w.Blank()
	}

	compliant, err := e.compliant()
	if err != nil {
		return nil, err
	}
	tmpl := envGeneral
	if compliant {
		tmpl = envCompliant
		if !e.hasParam {
			tmpl = strings.Replace(tmpl, envParamRoundTrip, "", 1)
		}
	}
	inRec, err := e.reg.MustLookup(e.input.Argument)
	if err != nil {
		return nil, err
	}
	stub := strings.NewReplacer(
		"{module}", e.info.Model,
		"{wrapper}", e.opt.WrapperModule,
		"{env}", e.class.Name+"Env",
		"{input}", inRec.Name,
	).Replace(tmpl)
	for _, l := range strings.Split(strings.TrimRight(stub, "\n"), "\n") {
		w.Line(l)
	}
	return w.Bytes(), nil
}

// dataclassOrder lists every struct reachable from roots so that nested
// structs precede the structs using them, each once.
func (e *Emitter) dataclassOrder(roots []string) ([]types.Record, error) {
	seen := make(map[string]bool)
	var order []types.Record
	var visit func(name string) error
	visit = func(name string) error {
		if seen[name] {
			return nil
		}
		seen[name] = true
		rec, err := e.reg.MustLookup(name)
		if err != nil {
			return err
		}
		if rec.Mode != types.ModeStruct {
			return nil
		}
		for _, el := range rec.Elements {
			if err := visit(el.Type); err != nil {
				return err
			}
		}
		order = append(order, rec)
		return nil
	}
	for _, r := range roots {
		if err := visit(r); err != nil {
			return nil, err
		}
	}
	return order, nil
}

func (e *Emitter) dataclass(w *emit.Writer, rec types.Record) error {
	fields := make([]string, 0, len(rec.Elements))
	for _, el := range rec.Elements {
		elRec, err := e.reg.MustLookup(el.Type)
		if err != nil {
			return err
		}
		switch elRec.Mode {
		case types.ModeScalar:
			info, err := scalar(elRec.Name)
			if err != nil {
				return err
			}
			fields = append(fields, el.Name+": "+info.python)
		case types.ModeArray:
			fields = append(fields, el.Name+": np.ndarray")
		default:
			fields = append(fields, el.Name+": "+elRec.Name)
		}
	}
	w.Line("@dataclass")
	w.Block("class "+rec.Name+":", func() {
		if len(fields) == 0 {
			w.Line("pass")
		}
		for _, f := range fields {
			w.Line(f)
		}
	})
	return nil
}

func (e *Emitter) dtypeFields(w *emit.Writer, rec types.Record) error {
	for _, el := range rec.Elements {
		elRec, err := e.reg.MustLookup(el.Type)
		if err != nil {
			return err
		}
		switch elRec.Mode {
		case types.ModeScalar:
			info, err := scalar(elRec.Name)
			if err != nil {
				return err
			}
			w.Linef("('%s', %s),", el.Name, info.numpy)
		case types.ModeArray:
			info, err := scalar(elRec.Base)
			if err != nil {
				return err
			}
			w.Linef("('%s', %s, (%d,)),", el.Name, info.numpy, elRec.Size)
		default:
			var nestedErr error
			w.Group("('"+el.Name+"', [", "]),", false, func() {
				nestedErr = e.dtypeFields(w, elRec)
			})
			if nestedErr != nil {
				return nestedErr
			}
		}
	}
	return nil
}

// compliant reports whether the model fits the single action, single state
// environment contract.
func (e *Emitter) compliant() (bool, error) {
	in, err := marshal.RequireStruct(e.reg, e.input.Argument)
	if err != nil {
		return false, err
	}
	out, err := marshal.RequireStruct(e.reg, e.output.Return)
	if err != nil {
		return false, err
	}
	return len(in.Elements) == 1 && in.Elements[0].Name == "Action" &&
		len(out.Elements) == 1 && out.Elements[0].Name == "State", nil
}

// pyFloat renders v the way Python prints a float.
func pyFloat(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "float('inf')"
	case math.IsInf(v, -1):
		return "-float('inf')"
	case math.IsNaN(v):
		return "float('nan')"
	}
	s := strconv.FormatFloat(v, 'g', -1, 64)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}
	return s
}

const envGeneral = `import gym
import {module}


class {env}(gym.Env):
  metadata = {'render.modes': []}
  reward_range = (-float('inf'), float('inf'))

  # action_space and observation_space are left to the user:
  # see {input}_dtype for the input layout.

  initial_state = []

  def __init__(self):
    self._physics = None
    self.reset()

  def is_done(self, new_state) -> bool:
    raise NotImplementedError

  def get_reward(self, new_state, action) -> float:
    raise NotImplementedError

  def step(self, action):
    state = self._step_physics(action)
    ret = np.array(state, dtype={input}_dtype), self.get_reward(state, action), self.is_done(state), {}
    self.state = state
    return ret

  def seed(self, seed=None):
    return [seed]

  def reset(self):
    if self._physics is not None:
      self._physics.terminate()
    self._physics = {module}.{wrapper}()
    self._physics.initialize()
    self.state = {env}.initial_state
    return self.state

  def render(self, mode='human'):
    super({env}, self).render(mode=mode)

  def close(self):
    self._physics.terminate()

  def _step_physics(self, action):
    return self._physics.step(action)
`

const envParamRoundTrip = `    params = self._physics.get_param()
    self._physics.set_param(params)
`

const envCompliant = `import gym
import {module}


class {env}(gym.Env):
  metadata = {'render.modes': []}
  reward_range = (-float('inf'), float('inf'))

  def __init__(self):
    self._physics = None
    self.action_space = gym.spaces.Box()
    self.observation_space = gym.spaces.Box()
    self.reset()

  def is_done(self, new_state) -> bool:
    raise NotImplementedError

  def get_reward(self, new_state, action) -> float:
    raise NotImplementedError

  def step(self, action):
    state = self._step_physics({'Action': action})
    self.state = state[0]
    return self.state, self.get_reward(state, action), self.is_done(state), {}

  def seed(self, seed=None):
    return [seed]

  def reset(self):
    if self._physics is not None:
      self._physics.terminate()
    self._physics = {module}.{wrapper}()
    params = self._physics.get_param()
    self._physics.set_param(params)
    self._physics.initialize()
    self.state = np.array([])
    return self.state

  def render(self, mode='human'):
    super({env}, self).render(mode=mode)

  def close(self):
    self._physics.terminate()

  def _step_physics(self, action):
    return self._physics.step(action)
`
