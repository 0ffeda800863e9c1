// Package domain contains the core business entities of the task tracker:
// users, the employees they manage, the tasks assigned to those employees and
// the per-user notification settings. Entities validate themselves and carry
// the small amount of behavior that does not depend on storage, such as
// applying a partial update to a task and recording it in the task history.
package domain
