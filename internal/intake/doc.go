// Package intake stages uploaded project archives for building.
//
// Uploads are written under a single staging directory with generated
// names and removed after their build finishes, successful or not. The
// package validates archive names, rejects empty payloads, and refuses
// any destination that would resolve outside the staging directory.
//
// Example usage:
//
//	staging, err := intake.NewStaging("")
//	if err != nil {
//	    return err
//	}
//
//	path, err := staging.Stage(upload, "project.zip")
//	if err != nil {
//	    return err
//	}
//	defer staging.Remove(path)
package intake
