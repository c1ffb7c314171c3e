package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ProcessSuite struct {
	suite.Suite
	params Parameters
}

func TestProcessSuite(t *testing.T) {
	suite.Run(t, new(ProcessSuite))
}

func (s *ProcessSuite) SetupTest() {
	s.params = DefaultParameters()
}

func (s *ProcessSuite) TestSAtWake() {
	s.Run("full 8h sleep gives low S", func() {
		s.InDelta(0.1, SAtWake(8.0), 0.01)
	})
	s.Run("4h sleep gives moderate S", func() {
		s.InDelta(0.4, SAtWake(4.0), 0.01)
	})
	s.Run("zero sleep gives the formula's maximum of 0.7", func() {
		s.InDelta(0.7, SAtWake(0.0), 0.01)
	})
	s.Run("oversleeping clamps at min 0.1", func() {
		s.InDelta(0.1, SAtWake(12.0), 0.01)
	})
}

func (s *ProcessSuite) TestProcessSAwake() {
	h := s.params.Homeostatic

	s.Run("zero hours awake returns sAtWake unchanged", func() {
		s.InDelta(0.2, ProcessSAwake(0.2, 0, h), 0.001)
	})
	s.Run("pressure rises monotonically with hours awake", func() {
		early := ProcessSAwake(0.2, 4, h)
		late := ProcessSAwake(0.2, 16, h)
		s.Less(early, late)
	})
	s.Run("pressure approaches SMax as hours awake grows large", func() {
		v := ProcessSAwake(0.2, 200, h)
		s.InDelta(h.SMax, v, 0.01)
	})
	s.Run("negative hours awake treated as zero", func() {
		s.Equal(ProcessSAwake(0.3, 0, h), ProcessSAwake(0.3, -5, h))
	})
}

func (s *ProcessSuite) TestProcessSAsleep() {
	h := s.params.Homeostatic

	s.Run("zero hours asleep returns sPrev unchanged", func() {
		s.InDelta(0.8, ProcessSAsleep(0.8, 0, h), 0.001)
	})
	s.Run("pressure decays monotonically with hours asleep", func() {
		early := ProcessSAsleep(0.8, 1, h)
		late := ProcessSAsleep(0.8, 6, h)
		s.Greater(early, late)
	})
	s.Run("pressure approaches SMin as hours asleep grows large", func() {
		v := ProcessSAsleep(0.8, 200, h)
		s.InDelta(h.SMin, v, 0.01)
	})
}

func (s *ProcessSuite) TestProcessC() {
	c := s.params.Circadian

	s.Run("peaks at amplitude near acrophase", func() {
		v := ProcessC(c.AcrophaseEffectiveHours, 0, c)
		s.InDelta(c.AmplitudeEffective, v, 0.001)
	})
	s.Run("troughs at negative amplitude 12h from acrophase", func() {
		v := ProcessC(c.AcrophaseEffectiveHours+12, 0, c)
		s.InDelta(-c.AmplitudeEffective, v, 0.001)
	})
	s.Run("phase shift moves the peak", func() {
		shifted := ProcessC(c.AcrophaseEffectiveHours, 2, c)
		s.Less(shifted, c.AmplitudeEffective)
	})
	s.Run("is periodic over the configured period", func() {
		a := ProcessC(5.0, 0, c)
		b := ProcessC(5.0+c.PeriodHours, 0, c)
		s.InDelta(a, b, 1e-9)
	})
}

func (s *ProcessSuite) TestCircadianInertiaFactor() {
	c := s.params.Circadian

	s.Run("waking at the trough gives maximal factor", func() {
		f := CircadianInertiaFactor(-c.AmplitudeEffective, c)
		s.InDelta(1.0, f, 0.01)
	})
	s.Run("waking at the peak gives minimal factor", func() {
		f := CircadianInertiaFactor(c.AmplitudeEffective, c)
		s.InDelta(0.4, f, 0.01)
	})
	s.Run("zero amplitude degenerates to 1.0", func() {
		zero := Circadian{AmplitudeEffective: 0}
		s.Equal(1.0, CircadianInertiaFactor(0, zero))
	})
}

func (s *ProcessSuite) TestProcessW() {
	i := s.params.Inertia
	c := s.params.Circadian

	s.Run("at the moment of waking W is at full magnitude scaled by factor", func() {
		v := ProcessW(0, -c.AmplitudeEffective, i, c)
		s.InDelta(i.WMax, v, 0.01)
	})
	s.Run("decays linearly to zero by the end of the window", func() {
		v := ProcessW(i.DurationMinutes, -c.AmplitudeEffective, i, c)
		s.InDelta(0, v, 0.01)
	})
	s.Run("zero beyond the inertia window", func() {
		s.Equal(0.0, ProcessW(i.DurationMinutes+1, -c.AmplitudeEffective, i, c))
	})
	s.Run("zero before wake", func() {
		s.Equal(0.0, ProcessW(-1, -c.AmplitudeEffective, i, c))
	})
}

func (s *ProcessSuite) TestPerformance() {
	w := s.params.Weights

	s.Run("best-case state gives high performance below the amplitude-limited ceiling", func() {
		st := StepState{S: 0, C: s.params.Circadian.AmplitudeEffective, W: 0, HoursOnDuty: 0}
		p := Performance(st, w)
		s.Greater(p, 90.0)
		s.LessOrEqual(p, 100.0)
	})
	s.Run("worst-case state clamps at the floor of 20", func() {
		st := StepState{S: 1, C: -s.params.Circadian.AmplitudeEffective, W: 1, HoursOnDuty: 20}
		p := Performance(st, w)
		s.Equal(20.0, p)
	})
	s.Run("always within [20, 100]", func() {
		for _, st := range []StepState{
			{S: 0.5, C: 0.1, W: 0.05, HoursOnDuty: 3},
			{S: 0.9, C: -0.4, W: 0.3, HoursOnDuty: 12},
		} {
			p := Performance(st, w)
			s.GreaterOrEqual(p, 20.0)
			s.LessOrEqual(p, 100.0)
		}
	})
	s.Run("increasing time on duty monotonically lowers performance", func() {
		base := StepState{S: 0.3, C: 0.1, W: 0}
		base.HoursOnDuty = 1
		early := Performance(base, w)
		base.HoursOnDuty = 10
		late := Performance(base, w)
		s.Less(late, early)
	})
}

func (s *ProcessSuite) TestClamp() {
	s.Equal(5.0, clamp(5, 0, 10))
	s.Equal(0.0, clamp(-1, 0, 10))
	s.Equal(10.0, clamp(11, 0, 10))
}

func (s *ProcessSuite) TestProcessCHasNoNaN() {
	c := s.params.Circadian
	for h := 0.0; h < 24; h += 1.5 {
		v := ProcessC(h, 0, c)
		s.False(math.IsNaN(v))
	}
}
