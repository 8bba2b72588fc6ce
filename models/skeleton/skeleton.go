package skeleton

// Skeleton is the decoded pose of one inference.
type Skeleton struct {
	// Keypoints holds one location per channel, Absent when undetected.
	Keypoints []Keypoint `json:"keypoints"`
	// Confidences holds the peak score per channel, detected or not.
	Confidences []float32 `json:"confidences"`
	// Bones are the topology pairs with both joints detected.
	Bones []Bone `json:"bones"`
	// ImageWidth is the width the keypoints are expressed in.
	ImageWidth int `json:"image_width"`
	// ImageHeight is the height the keypoints are expressed in.
	ImageHeight int `json:"image_height"`
}

// Detected reports whether joint i was found.
func (s *Skeleton) Detected(i int) bool {
	return i >= 0 && i < len(s.Keypoints) && !s.Keypoints[i].IsAbsent()
}

// DetectedCount returns the number of joints found.
func (s *Skeleton) DetectedCount() int {
	n := 0
	for i := range s.Keypoints {
		if s.Detected(i) {
			n++
		}
	}
	return n
}

// Lines returns the endpoints of each bone, in bone order.
func (s *Skeleton) Lines() [][2]Keypoint {
	lines := make([][2]Keypoint, 0, len(s.Bones))
	for _, b := range s.Bones {
		lines = append(lines, [2]Keypoint{s.Keypoints[b.A], s.Keypoints[b.B]})
	}
	return lines
}
