// Package models defines the core domain models for the study group tracker.
//
// # Entities
//
//   - User: an account that can sign in once an administrator approves it
//   - Participant: a person attending the study group, optionally referred by another participant
//   - StudySession: one meeting of the group, at most one per calendar date
//   - AttendanceRecord: whether a participant attended a given session
//
// Dashboard and report types (DashboardStats, AttendanceSummary, RosterEntry) are read-only
// projections computed from these entities.
//
// # Conventions
//
//  1. IDs are SQLite INTEGER PRIMARY KEY values (int64)
//  2. Dates are "YYYY-MM-DD" strings, timestamps are "YYYY-MM-DD HH:MM:SS" strings as stored
//  3. Nullable columns are pointers so that JSON renders them as null
//  4. Relationships use IDs, never pointers to other models
package models
