package skeleton

// COCO17Joints names the 17 COCO keypoint channels in order.
var COCO17Joints = []string{
	"nose", "left_eye", "right_eye", "left_ear", "right_ear",
	"left_shoulder", "right_shoulder", "left_elbow", "right_elbow",
	"left_wrist", "right_wrist", "left_hip", "right_hip",
	"left_knee", "right_knee", "left_ankle", "right_ankle",
}

// COCO17 is the bone layout for COCO keypoint heatmaps.
func COCO17() Topology {
	return Topology{
		{0, 1}, {0, 2}, {1, 3}, {2, 4},
		{5, 6}, {5, 7}, {7, 9}, {6, 8}, {8, 10},
		{5, 11}, {6, 12}, {11, 12},
		{11, 13}, {13, 15}, {12, 14}, {14, 16},
	}
}

// MPII16Joints names the 16 MPII keypoint channels in order.
var MPII16Joints = []string{
	"right_ankle", "right_knee", "right_hip", "left_hip", "left_knee", "left_ankle",
	"pelvis", "thorax", "upper_neck", "head_top",
	"right_wrist", "right_elbow", "right_shoulder",
	"left_shoulder", "left_elbow", "left_wrist",
}

// MPII16 is the bone layout for MPII keypoint heatmaps.
func MPII16() Topology {
	return Topology{
		{0, 1}, {1, 2}, {2, 6}, {3, 6}, {3, 4}, {4, 5},
		{6, 7}, {7, 8}, {8, 9},
		{10, 11}, {11, 12}, {12, 7}, {13, 7}, {13, 14}, {14, 15},
	}
}
