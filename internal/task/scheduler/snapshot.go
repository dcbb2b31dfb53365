package scheduler

import "time"

func (s *Service) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	tz := time.Local.String()
	if s.loc != nil {
		tz = s.loc.String()
	}
	snap := Snapshot{
		Running:      s.c != nil,
		Timezone:     tz,
		Start:        s.start,
		End:          s.end,
		MisfireGrace: s.graceLocked(),
		Misfires:     s.misfires.Load(),
		Schedules:    make([]ScheduleInfo, 0, len(s.triggers)),
	}
	for _, t := range s.triggers {
		info := ScheduleInfo{Name: t.name, Spec: t.spec, Timeout: t.timeout}
		if s.c != nil && t.entry != 0 {
			e := s.c.Entry(t.entry)
			info.Next, info.Prev = e.Next, e.Prev
		}
		snap.Schedules = append(snap.Schedules, info)
	}
	return snap
}
