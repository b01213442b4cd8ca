package domain

// Site is a physical location that tasks are performed at.
type Site struct {
	SiteID      int64
	Name        string
	Coordinates Coordinates
}

// Task is one unit of work of a mission, tied to a single site.
// Exactly one task per mission carries IsFirst once circuits were generated.
type Task struct {
	TaskID    int64
	MissionID int64
	SiteID    int64
	Site      *Site
	IsFirst   bool
}

// Mission groups the tasks that a single circuit visits.
type Mission struct {
	MissionID int64
	Name      string
}
