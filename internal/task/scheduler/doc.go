// Package scheduler fires report jobs on cron or interval schedules.
//
// Schedules are evaluated in one configured timezone and only inside the
// start/end date window. A trigger that is noticed later than the misfire
// grace after its due time (a suspended host, a stalled process) is skipped,
// not replayed. Fired triggers become engine tasks; the scheduler never runs
// jobs itself.
package scheduler
