package domain

// Project represents a tracked client or category in the domain layer.
type Project struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Hidden bool   `json:"hidden"`
}

// FindProject returns the project with the given id, or nil.
func FindProject(projects []Project, id string) *Project {
	for i := range projects {
		if projects[i].ID == id {
			return &projects[i]
		}
	}
	return nil
}

// FindProjectByName returns the project with the given name, or nil.
// Names are user-editable and not enforced unique; the first match wins.
func FindProjectByName(projects []Project, name string) *Project {
	for i := range projects {
		if projects[i].Name == name {
			return &projects[i]
		}
	}
	return nil
}
