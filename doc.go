/*
go-tagtrack recovers the planar world position and heading of a single
fiducial marker from overhead camera frames.

The pipeline takes the four ordered image corners of a detected marker,
removes lens distortion using the calibrated camera model, derives the
heading from a designated edge of the marker and projects the undistorted
centroid onto a ground plane at a fixed, known distance below the camera.

Packages:

	camera      intrinsic matrix, Brown-Conrady distortion and point undistortion
	cvcamera    OpenCV backed undistortion, under camera/
	pose        heading, world plane projection and the per identifier tracker
	config      JSON configuration and OpenCV calibration file import
	detect      ArUco marker detection via GoCV
	preprocess  frame preview scaling and channel swapping
	render      overlay drawing of tracked markers
	record      CSV pose logging and trajectory plotting

See example code and usage in the examples subdirectory.
*/
package tagtrack
