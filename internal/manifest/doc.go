// Loads the project description that drives a merge.
//
// A manifest names the component, the primary archive, the target
// platforms with their link commands or prebuilt files, and the output
// groups that publish artifacts. Manifests are YAML or TOML, chosen by file
// extension. Unknown YAML fields are rejected.
//
//	component: mylib
//	archive:
//	  output: build/libs/mylib.jar
//	platforms:
//	  - platform: linux/amd64
//	    link:
//	      run: cc -shared -o build/linux-x64/libmylib.so src/*.c
//	      output: build/linux-x64/libmylib.so
//	  - platform: windows/amd64
//	    runtime: [prebuilt/windows-x64/mylib.dll]
//	groups:
//	  - name: runtimeElements
//	    artifacts:
//	      - {name: mylib, file: build/libs/mylib.jar}
package manifest
