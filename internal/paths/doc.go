// Provides platform-appropriate paths for uberjni.
//
// Paths follow XDG conventions on Linux and platform-native conventions on
// macOS and Windows. The program name "uberjni" is used as the subdirectory
// under each base path.
package paths
